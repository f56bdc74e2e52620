package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/micro"
	"github.com/stretchr/testify/suite"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/events"
	"github.com/flarexio/cms/translation"
)

// request records what a micro handler answers.
type request struct {
	micro.Request
	data        []byte
	code        string
	description string
	response    []byte
}

func (r *request) Data() []byte {
	return r.data
}

func (r *request) Error(code string, description string, data []byte, opts ...micro.RespondOpt) error {
	r.code = code
	r.description = description
	return nil
}

func (r *request) RespondJSON(v any, opts ...micro.RespondOpt) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	r.response = data
	return nil
}

type pubsubTestSuite struct {
	suite.Suite
}

func (suite *pubsubTestSuite) TestDecode() {
	e := events.NewContentChanged("faqs", events.Created, "01J00000000000000000000000")
	data, err := json.Marshal(e)
	suite.Require().NoError(err)

	decoded, err := Decode(e.Topic(), data)
	suite.NoError(err)
	suite.Equal("faqs", decoded.Section)
	suite.Equal(events.Created, decoded.Action)
	suite.Equal(e.ItemID, decoded.ItemID)
}

func (suite *pubsubTestSuite) TestDecodeFillsFromTopic() {
	decoded, err := Decode("content.hero.updated", []byte(`{}`))
	suite.NoError(err)
	suite.Equal("hero", decoded.Section)
	suite.Equal(events.Updated, decoded.Action)
}

func (suite *pubsubTestSuite) TestDecodeMismatch() {
	e := events.NewContentChanged("faqs", events.Created, "")
	data, _ := json.Marshal(e)

	_, err := Decode("content.steps.created", data)
	suite.ErrorIs(err, events.ErrInvalidTopic)

	_, err = Decode("users.x.created", data)
	suite.ErrorIs(err, events.ErrInvalidTopic)
}

func (suite *pubsubTestSuite) TestEventHandler() {
	var received *events.ContentChanged
	endpoint := func(ctx context.Context, request any) (any, error) {
		received = request.(*events.ContentChanged)
		return nil, nil
	}

	handler := EventHandler(endpoint)

	e := events.NewContentChanged("steps", events.Deleted, "")
	err := handler(context.Background(), e)
	suite.NoError(err)
	suite.Same(e, received)
}

func (suite *pubsubTestSuite) TestSyncHandler() {
	var received cms.SyncRequest
	endpoint := func(ctx context.Context, req any) (any, error) {
		received = req.(cms.SyncRequest)
		return &translation.SyncReport{BaseLocale: "en", Keys: 3}, nil
	}

	handler := SyncHandler(endpoint)

	r := &request{data: []byte(`{"locales":["es"],"prune":false}`)}
	handler(r)
	suite.Empty(r.code)
	suite.Equal([]string{"es"}, received.Locales)
	suite.Require().NotNil(received.Prune)
	suite.False(*received.Prune)

	var report translation.SyncReport
	suite.Require().NoError(json.Unmarshal(r.response, &report))
	suite.Equal("en", report.BaseLocale)
	suite.Equal(3, report.Keys)

	// an empty body syncs with defaults
	r = &request{}
	handler(r)
	suite.Empty(r.code)
	suite.Empty(received.Locales)
	suite.NotEmpty(r.response)
}

func (suite *pubsubTestSuite) TestSyncHandlerErrors() {
	endpoint := func(ctx context.Context, req any) (any, error) {
		return nil, translation.ErrNoTranslator
	}

	handler := SyncHandler(endpoint)

	r := &request{data: []byte(`{"locales":`)}
	handler(r)
	suite.Equal("400", r.code)
	suite.Nil(r.response)

	r = &request{data: []byte(`{"auto_translate":true}`)}
	handler(r)
	suite.Equal("417", r.code)
	suite.Equal(translation.ErrNoTranslator.Error(), r.description)
	suite.Nil(r.response)
}

func (suite *pubsubTestSuite) TestCoverageHandler() {
	coverage := []*translation.Coverage{
		{Locale: "en", Translated: 4, Total: 4, Percent: 100},
		{Locale: "es", Translated: 2, Total: 4, Percent: 50},
	}

	handler := CoverageHandler(func(ctx context.Context, req any) (any, error) {
		return coverage, nil
	})

	r := &request{}
	handler(r)
	suite.Empty(r.code)
	suite.JSONEq(`[
		{"locale":"en","translated":4,"total":4,"stale":0,"percent":100},
		{"locale":"es","translated":2,"total":4,"stale":0,"percent":50}
	]`, string(r.response))

	failing := CoverageHandler(func(ctx context.Context, req any) (any, error) {
		return nil, errors.New("store unavailable")
	})

	r = &request{}
	failing(r)
	suite.Equal("417", r.code)
	suite.Equal("store unavailable", r.description)
}

func TestPubSubTestSuite(t *testing.T) {
	suite.Run(t, new(pubsubTestSuite))
}
