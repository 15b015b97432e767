package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Fee split caps, in basis points of the total collected.
const (
	platformFeeBPS  = 2000 // 20%
	maxHostFeeBPS   = 500  // 5%
	maxCombinedBPS  = 4000 // host + prize pool together
	bpsDenominator  = 10000
	prizeModeSplit  = "pool_split"
	prizeModeAssets = "asset_based"
)

type calculateFeesRequest struct {
	TotalCollected uint64 `json:"totalCollected"`
	HostFeeBPS     uint16 `json:"hostFeeBps"`
	PrizePoolBPS   uint16 `json:"prizePoolBps"`
	PrizeMode      string `json:"prizeMode"`
}

type calculateFeesResponse struct {
	Platform uint64 `json:"platform"`
	Host     uint64 `json:"host"`
	Prizes   uint64 `json:"prizes"`
	Charity  uint64 `json:"charity"`
}

func bps(amount uint64, share uint16) uint64 {
	return amount * uint64(share) / bpsDenominator
}

// CalculateFees computes the fundraising split for a room's entry pool.
// Charity takes whatever remains after platform, host, and prizes.
func CalculateFees(c *gin.Context) {
	var req calculateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.HostFeeBPS > maxHostFeeBPS {
		c.JSON(http.StatusBadRequest, gin.H{"error": "host fee exceeds maximum (5%)"})
		return
	}
	if int(req.HostFeeBPS)+int(req.PrizePoolBPS) > maxCombinedBPS {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total allocation exceeds maximum (40%)"})
		return
	}

	platform := bps(req.TotalCollected, platformFeeBPS)
	host := bps(req.TotalCollected, req.HostFeeBPS)

	var prizes uint64
	switch req.PrizeMode {
	case prizeModeSplit:
		prizes = bps(req.TotalCollected, req.PrizePoolBPS)
	case prizeModeAssets:
		prizes = 0 // prizes pre-deposited outside the pool
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown prize mode"})
		return
	}

	charity := req.TotalCollected
	for _, cut := range []uint64{platform, host, prizes} {
		if cut > charity {
			charity = 0
			break
		}
		charity -= cut
	}

	c.JSON(http.StatusOK, calculateFeesResponse{
		Platform: platform,
		Host:     host,
		Prizes:   prizes,
		Charity:  charity,
	})
}
