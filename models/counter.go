// api/models/counter.go
package models

// TotalCounterID is the fixed document id (and partition key) under which
// the cached all-time total lives. Daily counters never use this id.
const TotalCounterID = "totalCount"

// CounterDocument is one visit counter in the document store. Daily
// counters use the UTC calendar date (YYYY-MM-DD) as both id and partition
// key; the running total uses TotalCounterID for both. At most one
// document exists per (partitionKey, id) pair, created implicitly on the
// first increment and never deleted.
type CounterDocument struct {
	ID           string `json:"id"`
	PartitionKey string `json:"partitionKey"`
	Count        int64  `json:"count"`
}

// CountResponse is the success body of the counting endpoint.
type CountResponse struct {
	DailyCount int64 `json:"dailyCount"`
	TotalCount int64 `json:"totalCount"`
}
