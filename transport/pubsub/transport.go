package pubsub

import (
	"context"
	"encoding/json"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/events"
)

func EventHandler(endpoint endpoint.Endpoint) events.Handler {
	return func(ctx context.Context, e *events.ContentChanged) error {
		_, err := endpoint(ctx, e)
		return err
	}
}

func SyncHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req cms.SyncRequest
		if data := r.Data(); len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				r.Error("400", err.Error(), nil)
				return
			}
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}

func CoverageHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		ctx := context.Background()
		resp, err := endpoint(ctx, nil)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}

// AddService exposes the cms group on NATS micro: cms.sync and
// cms.coverage.
func AddService(bus *NATSBus, cfg micro.Config, endpoints cms.EndpointSet) (micro.Service, error) {
	srv, err := micro.AddService(bus.Conn(), cfg)
	if err != nil {
		return nil, err
	}

	root := srv.AddGroup("cms")

	// SUB cms.sync
	if err := root.AddEndpoint("sync", SyncHandler(endpoints.SyncTranslations)); err != nil {
		return nil, err
	}

	// SUB cms.coverage
	if err := root.AddEndpoint("coverage", CoverageHandler(endpoints.Coverage)); err != nil {
		return nil, err
	}

	return srv, nil
}
