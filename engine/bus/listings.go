package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

const (
	// SubjectExtracted carries every listing the extractor produced.
	SubjectExtracted = "listings.extracted"
	// SubjectEstimate is a request/reply subject: Record in, EstimateReply out.
	SubjectEstimate = "listings.estimate"
)

// ErrRemote is returned by RequestEstimate when the worker answered with an
// error.
var ErrRemote = errors.New("bus: remote error")

// EstimateReply is the answer on SubjectEstimate: the report on success or
// only Error on failure.
type EstimateReply struct {
	*assess.Report
	Error string `json:"error,omitempty"`
}

// PublishExtracted announces a freshly extracted listing.
func PublishExtracted(ctx context.Context, nc *nats.Conn, rec listing.Record) error {
	return Publish(ctx, nc, SubjectExtracted, rec)
}

// SubscribeExtracted handles announced listings.
func SubscribeExtracted(nc *nats.Conn, handler func(context.Context, listing.Record)) (*nats.Subscription, error) {
	return Subscribe(nc, SubjectExtracted, handler)
}

// ServeEstimates answers estimate requests within a queue group so that
// several workers share the load.
func ServeEstimates(nc *nats.Conn, queue string, handle func(context.Context, listing.Record) (assess.Report, error)) (*nats.Subscription, error) {
	return nc.QueueSubscribe(SubjectEstimate, queue, func(msg *nats.Msg) {
		var reply EstimateReply
		var rec listing.Record
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			reply.Error = fmt.Sprintf("decode listing: %v", err)
		} else if rep, err := handle(msgContext(msg), rec); err != nil {
			reply.Error = err.Error()
		} else {
			reply.Report = &rep
		}
		data, err := json.Marshal(reply)
		if err != nil {
			return
		}
		_ = msg.Respond(data)
	})
}

// RequestEstimate asks a worker to assess rec.
func RequestEstimate(ctx context.Context, nc *nats.Conn, rec listing.Record) (assess.Report, error) {
	reply, err := Request[listing.Record, EstimateReply](ctx, nc, SubjectEstimate, rec)
	if err != nil {
		return assess.Report{}, fmt.Errorf("bus: request estimate: %w", err)
	}
	if reply.Error != "" {
		return assess.Report{}, fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	}
	if reply.Report == nil {
		return assess.Report{}, fmt.Errorf("%w: empty reply", ErrRemote)
	}
	return *reply.Report, nil
}
