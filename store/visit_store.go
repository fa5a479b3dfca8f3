// api/store/visit_store.go
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"visitcounter/api/database"
	"visitcounter/api/models"
	"visitcounter/api/utils"
)

// VisitStore appends immutable visit events to ClickHouse and serves the
// daily-visits stats query. The trail is optional and best effort; counter
// correctness never depends on it.
type VisitStore struct {
	DB *database.ClickHouseClient
}

func NewVisitStore(chClient *database.ClickHouseClient) *VisitStore {
	return &VisitStore{
		DB: chClient,
	}
}

func (s *VisitStore) InsertVisitEvents(ctx context.Context, events []models.VisitEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Column names and order must exactly match the visit_events table schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO visit_events (
			event_id, visit_date, page_path, timestamp, user_agent,
			ip_address, os, browser, device
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.VisitDate,
			event.PagePath,
			event.Timestamp,
			event.UserAgent,
			event.IPAddress,
			event.Visitor.OS,
			event.Visitor.Browser,
			event.Visitor.Device,
		)
		if err != nil {
			log.Printf("Error appending visit event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

func (s *VisitStore) GetVisitCountsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, count() AS visits
		FROM visit_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query visit counts over time: %w", err)
	}
	defer rows.Close()

	var results []models.VisitCountByTime
	for rows.Next() {
		var timeBucket time.Time
		var visits uint64
		if err := rows.Scan(&timeBucket, &visits); err != nil {
			log.Printf("Error scanning row for visit counts over time: %v", err)
			continue
		}
		results = append(results, models.VisitCountByTime{
			Time:  timeBucket,
			Count: visits,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during visit counts query: %w", err)
	}

	return results, nil
}
