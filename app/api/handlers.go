package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mudikgratis2025/detik-syndicator/app/ledger"
)

type Handler struct {
	ledger    *ledger.Ledger
	version   string
	startedAt time.Time
}

func NewHandler(led *ledger.Ledger, version string) *Handler {
	return &Handler{
		ledger:    led,
		version:   version,
		startedAt: time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":        time.Since(h.startedAt).Round(time.Second).String(),
		"posted_videos": h.ledger.GetCount(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	entries := h.ledger.GetRecentEntries(0)

	statusCounts := map[string]int{}
	destinationSuccesses := map[string]int{}
	for _, entry := range entries {
		for _, outcome := range entry.PostedTo {
			statusCounts[outcome.Status]++
			if outcome.Status == "success" {
				destinationSuccesses[outcome.DestinationID]++
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"posted_videos":      len(entries),
		"outcomes_by_status": statusCounts,
		"successes_by_page":  destinationSuccesses,
	})
}

func (h *Handler) GetLedger(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	entries := h.ledger.GetRecentEntries(limit)

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   h.ledger.GetCount(),
	})
}

func (h *Handler) APIGetEntry(c *gin.Context) {
	sourceURL := c.Query("url")
	if sourceURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	entry, ok := h.ledger.GetEntry(sourceURL)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not recorded"})
		return
	}

	c.JSON(http.StatusOK, entry)
}
