package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

func startTestNATS(t *testing.T) *nats.Conn {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return nc
}

var clio = listing.Record{
	Make: "Renault", Model: "Clio", Year: 2019, Price: 12500,
	Fuel: "Diesel", Mileage: 85000, Title: "Renault Clio 5 dCi",
}

func fixedNow() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }

func serveAssessor(t *testing.T, nc *nats.Conn) {
	t.Helper()
	a := assess.New(nil, fixedNow)
	sub, err := ServeEstimates(nc, "workers", func(_ context.Context, rec listing.Record) (assess.Report, error) {
		return a.Assess(rec)
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sub.Unsubscribe() })
}

func TestExtractedRoundTrip(t *testing.T) {
	nc := startTestNATS(t)
	ch := make(chan listing.Record, 1)
	sub, err := SubscribeExtracted(nc, func(_ context.Context, rec listing.Record) { ch <- rec })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	if err := PublishExtracted(context.Background(), nc, clio); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-ch:
		if got != clio {
			t.Fatalf("got %+v, want %+v", got, clio)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for listing")
	}
}

func TestSubscribeDropsMalformed(t *testing.T) {
	nc := startTestNATS(t)
	called := make(chan struct{}, 1)
	sub, err := SubscribeExtracted(nc, func(context.Context, listing.Record) { called <- struct{}{} })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	nc.Publish(SubjectExtracted, []byte("{bad"))
	nc.Flush()
	select {
	case <-called:
		t.Fatal("handler should not be called for malformed data")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRequestEstimate(t *testing.T) {
	nc := startTestNATS(t)
	serveAssessor(t, nc)

	rep, err := RequestEstimate(context.Background(), nc, clio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := assess.New(nil, fixedNow).Assess(clio)
	if rep.Estimate.Maintenance.Average != want.Estimate.Maintenance.Average {
		t.Fatalf("maintenance = %d, want %d", rep.Estimate.Maintenance.Average, want.Estimate.Maintenance.Average)
	}
	if rep.Verdict.Status != want.Verdict.Status {
		t.Fatalf("verdict = %q, want %q", rep.Verdict.Status, want.Verdict.Status)
	}
}

func TestRequestEstimate_RemoteError(t *testing.T) {
	nc := startTestNATS(t)
	serveAssessor(t, nc)

	_, err := RequestEstimate(context.Background(), nc, listing.Record{Year: 2019})
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestServeEstimates_MalformedRequest(t *testing.T) {
	nc := startTestNATS(t)
	serveAssessor(t, nc)

	msg, err := nc.Request(SubjectEstimate, []byte("not json"), 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	var reply EstimateReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Error == "" || reply.Report != nil {
		t.Fatalf("expected error-only reply, got %s", msg.Data)
	}
}

func TestRequestEstimate_NoResponder(t *testing.T) {
	nc := startTestNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := RequestEstimate(ctx, nc, clio); err == nil {
		t.Fatal("expected error without a worker")
	}
}

func TestTraceContextPropagated(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	nc := startTestNATS(t)
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	got := make(chan trace.SpanContext, 1)
	sub, err := SubscribeExtracted(nc, func(ctx context.Context, _ listing.Record) {
		got <- trace.SpanContextFromContext(ctx)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	if err := PublishExtracted(ctx, nc, clio); err != nil {
		t.Fatal(err)
	}
	select {
	case sc := <-got:
		if sc.TraceID() != traceID || !sc.IsRemote() {
			t.Fatalf("trace context not propagated: %+v", sc)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
	}
}

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	c := (*headerCarrier)(msg)
	if c.Get("x") != "" || c.Keys() != nil {
		t.Fatal("empty carrier should have no values")
	}
	c.Set("traceparent", "abc")
	if c.Get("traceparent") != "abc" || len(c.Keys()) != 1 {
		t.Fatalf("unexpected carrier state: %v", msg.Header)
	}
}
