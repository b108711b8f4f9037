// internal/app/store/calls/callstore.go
package callstore

import (
	"context"
	"sort"
	"strconv"
	"time"

	agentstore "github.com/dalemusser/groomhub/internal/app/store/agents"
	"github.com/dalemusser/groomhub/internal/app/system/paging"
	"github.com/dalemusser/groomhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	calls *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{calls: db.Collection("call_logs")}
}

// Filter narrows call queries. From/To bound start_time (To is
// inclusive of the whole day when set to midnight). Agent and Status
// are exact matches; empty means all. Agent "none" selects calls with
// no attributed line.
type Filter struct {
	From   time.Time
	To     time.Time
	Agent  string
	Status string
}

func (f Filter) match() bson.M {
	m := bson.M{}
	rng := bson.M{}
	if !f.From.IsZero() {
		rng["$gte"] = f.From
	}
	if !f.To.IsZero() {
		rng["$lt"] = f.To.AddDate(0, 0, 1)
	}
	if len(rng) > 0 {
		m["start_time"] = rng
	}
	switch f.Agent {
	case "":
		// all agents
	case "none":
		m["agent_number"] = bson.M{"$in": bson.A{"", nil}}
	default:
		m["agent_number"] = f.Agent
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	return m
}

// AgentStats is the per-agent summary shown as a stat card.
type AgentStats struct {
	AgentNumber       string
	AgentName         string
	IncomingSuccess   int
	IncomingFailed    int
	OutgoingSuccess   int
	OutgoingFailed    int
	DistinctCustomers int
	TotalTalkSeconds  int
}

// TotalCalls returns the number of calls across all four buckets.
func (a AgentStats) TotalCalls() int {
	return a.IncomingSuccess + a.IncomingFailed + a.OutgoingSuccess + a.OutgoingFailed
}

// FetchAgentStats aggregates per-agent call stats in the filter range.
// A call counts as successful when its status is ANSWER or Completed;
// talk time sums only successful calls. Calls with no agent number are
// grouped into one bucket whose name resolves to "No Agent".
func (s *Store) FetchAgentStats(ctx context.Context, f Filter, names map[string]string) ([]AgentStats, error) {
	success := bson.A{models.CallStatusAnswer, models.CallStatusCompleted}
	isSuccess := bson.M{"$in": bson.A{"$status", success}}
	isIncoming := bson.M{"$eq": bson.A{"$direction", models.CallIncoming}}
	isOutgoing := bson.M{"$eq": bson.A{"$direction", models.CallOutgoing}}

	cond := func(parts ...any) bson.M {
		return bson.M{"$cond": bson.A{bson.M{"$and": parts}, 1, 0}}
	}

	pipeline := []bson.M{
		{"$match": f.match()},
		{"$group": bson.M{
			"_id":              bson.M{"$ifNull": bson.A{"$agent_number", ""}},
			"incoming_success": bson.M{"$sum": cond(isIncoming, isSuccess)},
			"incoming_failed":  bson.M{"$sum": cond(isIncoming, bson.M{"$not": bson.A{isSuccess}})},
			"outgoing_success": bson.M{"$sum": cond(isOutgoing, isSuccess)},
			"outgoing_failed":  bson.M{"$sum": cond(isOutgoing, bson.M{"$not": bson.A{isSuccess}})},
			"talk_seconds": bson.M{"$sum": bson.M{
				"$cond": bson.A{isSuccess, "$duration_seconds", 0},
			}},
			"customers": bson.M{"$addToSet": "$customer_number"},
		}},
		{"$project": bson.M{
			"incoming_success": 1,
			"incoming_failed":  1,
			"outgoing_success": 1,
			"outgoing_failed":  1,
			"talk_seconds":     1,
			"distinct_customers": bson.M{"$size": "$customers"},
		}},
	}

	cur, err := s.calls.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	type row struct {
		AgentNumber       string `bson:"_id"`
		IncomingSuccess   int    `bson:"incoming_success"`
		IncomingFailed    int    `bson:"incoming_failed"`
		OutgoingSuccess   int    `bson:"outgoing_success"`
		OutgoingFailed    int    `bson:"outgoing_failed"`
		TalkSeconds       int    `bson:"talk_seconds"`
		DistinctCustomers int    `bson:"distinct_customers"`
	}
	var rows []row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := make([]AgentStats, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, AgentStats{
			AgentNumber:       r.AgentNumber,
			AgentName:         agentstore.DisplayName(names, r.AgentNumber),
			IncomingSuccess:   r.IncomingSuccess,
			IncomingFailed:    r.IncomingFailed,
			OutgoingSuccess:   r.OutgoingSuccess,
			OutgoingFailed:    r.OutgoingFailed,
			DistinctCustomers: r.DistinctCustomers,
			TotalTalkSeconds:  r.TalkSeconds,
		})
	}

	// Named agents first in name order, the no-agent bucket last
	sort.SliceStable(stats, func(i, j int) bool {
		if (stats[i].AgentNumber == "") != (stats[j].AgentNumber == "") {
			return stats[j].AgentNumber == ""
		}
		return stats[i].AgentName < stats[j].AgentName
	})

	return stats, nil
}

// Page is one keyset-paginated window of the detailed calls table.
type Page struct {
	Calls      []models.CallLog
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// ListDetailed returns one page of calls newest first. Cursors encode
// the boundary call's start time so paging stays stable while new
// calls arrive.
func (s *Store) ListDetailed(ctx context.Context, f Filter, before, after string) (Page, error) {
	var page Page

	match := f.match()
	cfg := paging.ConfigureKeyset(before, after)

	// Newest first is the forward direction here, so flip the sort the
	// helper chose for name-ordered lists.
	order := -cfg.SortOrder
	if ks := timeKeysetWindow(cfg); ks != nil {
		match["$or"] = ks
	}

	find := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: order}, {Key: "_id", Value: order}}).
		SetLimit(paging.LimitPlusOne())

	cur, err := s.calls.Find(ctx, match, find)
	if err != nil {
		return page, err
	}
	defer cur.Close(ctx)

	var calls []models.CallLog
	if err := cur.All(ctx, &calls); err != nil {
		return page, err
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(calls)
	}
	res := paging.TrimPage(&calls, before, after)
	page.Calls = calls
	page.HasPrev = res.HasPrev
	page.HasNext = res.HasNext

	if len(calls) > 0 {
		first, last := calls[0], calls[len(calls)-1]
		page.PrevCursor = wafflemongo.EncodeCursor(timeKey(first.StartTime), first.ID)
		page.NextCursor = wafflemongo.EncodeCursor(timeKey(last.StartTime), last.ID)
	}
	return page, nil
}

// timeKey encodes a start time as epoch milliseconds for cursor use.
func timeKey(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// timeKeysetWindow builds the cursor window for a time-sorted list.
// The shared KeysetWindow helper compares string keys, which does not
// work against BSON dates, so the boundary is rebuilt as a real time.
func timeKeysetWindow(cfg paging.KeysetConfig) []bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	ms, err := strconv.ParseInt(cfg.Cursor.CI, 10, 64)
	if err != nil {
		return nil
	}
	bound := time.UnixMilli(ms).UTC()

	// Forward pages move to older calls, backward pages to newer ones.
	cmp := "$lt"
	if cfg.Direction == paging.Backward {
		cmp = "$gt"
	}
	return []bson.M{
		{"start_time": bson.M{cmp: bound}},
		{"start_time": bound, "_id": bson.M{cmp: cfg.Cursor.ID}},
	}
}

// CountInRange returns how many calls match the filter.
func (s *Store) CountInRange(ctx context.Context, f Filter) (int64, error) {
	return s.calls.CountDocuments(ctx, f.match())
}
