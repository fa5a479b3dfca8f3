// api/handlers/count_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"visitcounter/api/metrics"
	"visitcounter/api/models"
	"visitcounter/api/store"
	"visitcounter/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VisitTrail is the slice of the visit store the handlers need. Satisfied
// by store.VisitStore; tests inject fakes.
type VisitTrail interface {
	InsertVisitEvents(ctx context.Context, events []models.VisitEvent) error
	GetVisitCountsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error)
}

type CountHandlers struct {
	Counters *store.CounterStore
	Total    store.TotalStrategy
	Visits   VisitTrail // nil when the visit trail is disabled
	now      func() time.Time
}

func NewCountHandlers(counters *store.CounterStore, total store.TotalStrategy, visits VisitTrail) *CountHandlers {
	return &CountHandlers{
		Counters: counters,
		Total:    total,
		Visits:   visits,
		now:      time.Now,
	}
}

// CountVisit handles one visit: read today's counter, add one, write it
// back, then obtain the all-time total. The daily write is not rolled back
// when the total fails; the total can always be recomputed from the daily
// documents, a lost daily increment cannot.
func (h *CountHandlers) CountVisit(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	visitDate := h.now().UTC().Format("2006-01-02")

	daily := h.Counters.GetOrZero(ctx, visitDate) + 1
	if err := h.Counters.SetCount(ctx, visitDate, daily); err != nil {
		log.Printf("Error writing daily counter for %s: %v", visitDate, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record visit"})
		return
	}
	metrics.VisitsCounted.Inc()

	total, err := h.Total.ComputeTotal(ctx)
	if err != nil {
		log.Printf("Error computing total visitor count: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute total visitor count"})
		return
	}

	log.Printf("Daily count for %s: %d, total visitor count: %d", visitDate, daily, total)
	c.JSON(http.StatusOK, models.CountResponse{
		DailyCount: daily,
		TotalCount: total,
	})

	// The trail is appended after the response is written: a slow or
	// failing batch cannot delay or change what the visitor already got.
	if h.Visits != nil {
		h.recordVisit(ctx, c, visitDate)
	}
}

// recordVisit appends one event to the visit trail. Best effort: failures
// are logged, never surfaced.
func (h *CountHandlers) recordVisit(ctx context.Context, c *gin.Context, visitDate string) {
	userAgent := c.GetHeader("User-Agent")

	ipAddress := c.GetHeader("X-Forwarded-For")
	if ipAddress == "" {
		ipAddress = c.ClientIP()
	}

	event := models.VisitEvent{
		EventID:   uuid.New().String(),
		VisitDate: visitDate,
		PagePath:  c.Query("page"),
		Timestamp: h.now().UTC(),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		Visitor:   utils.Classify(userAgent),
	}

	if err := h.Visits.InsertVisitEvents(ctx, []models.VisitEvent{event}); err != nil {
		log.Printf("Error recording visit event %s: %v", event.EventID, err)
	}
}

// GetDailyVisits serves per-day visit counts from the trail.
func (h *CountHandlers) GetDailyVisits(c *gin.Context) {
	if h.Visits == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Visit tracking is not enabled"})
		return
	}

	interval := c.DefaultQuery("interval", "Day")

	var start, end time.Time
	var err error

	startParam := c.Query("start")
	if startParam != "" {
		start, err = time.Parse(time.RFC3339, startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return
		}
	} else {
		start = h.now().UTC().Add(-7 * 24 * time.Hour)
	}

	endParam := c.Query("end")
	if endParam != "" {
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return
		}
	} else {
		end = h.now().UTC()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Visits.GetVisitCountsOverTime(ctx, interval, start, end)
	if err != nil {
		log.Printf("Error getting visit counts over time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve visit statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
