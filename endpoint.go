package cms

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/events"
)

var ErrInvalidRequest = errors.New("invalid request")

type EndpointSet struct {
	Page               endpoint.Endpoint
	Section            endpoint.Endpoint
	UpdateSection      endpoint.Endpoint
	Items              endpoint.Endpoint
	Item               endpoint.Endpoint
	CreateItem         endpoint.Endpoint
	UpdateItem         endpoint.Endpoint
	DeleteItem         endpoint.Endpoint
	ReorderItems       endpoint.Endpoint
	Translations       endpoint.Endpoint
	PutTranslation     endpoint.Endpoint
	DeleteTranslation  endpoint.Endpoint
	ImportTranslations endpoint.Endpoint
	ExportTranslations endpoint.Endpoint
	Coverage           endpoint.Endpoint
	SyncTranslations   endpoint.Endpoint
	SignIn             endpoint.Endpoint
}

func NewEndpointSet(svc Service) EndpointSet {
	return EndpointSet{
		Page:               PageEndpoint(svc),
		Section:            SectionEndpoint(svc),
		UpdateSection:      UpdateSectionEndpoint(svc),
		Items:              ItemsEndpoint(svc),
		Item:               ItemEndpoint(svc),
		CreateItem:         CreateItemEndpoint(svc),
		UpdateItem:         UpdateItemEndpoint(svc),
		DeleteItem:         DeleteItemEndpoint(svc),
		ReorderItems:       ReorderItemsEndpoint(svc),
		Translations:       TranslationsEndpoint(svc),
		PutTranslation:     PutTranslationEndpoint(svc),
		DeleteTranslation:  DeleteTranslationEndpoint(svc),
		ImportTranslations: ImportTranslationsEndpoint(svc),
		ExportTranslations: ExportTranslationsEndpoint(svc),
		Coverage:           CoverageEndpoint(svc),
		SyncTranslations:   SyncTranslationsEndpoint(svc),
		SignIn:             SignInEndpoint(svc),
	}
}

func PageEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		locale, ok := request.(string)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.Page(locale)
	}
}

func SectionEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		section, ok := request.(content.Section)
		if !ok {
			return nil, ErrInvalidRequest
		}

		switch section {
		case content.HeroSection:
			return svc.Hero()
		case content.ContactSection:
			return svc.Contact()
		case content.SettingsSection:
			return svc.Settings()
		default:
			return nil, ErrInvalidRequest
		}
	}
}

// UpdateSectionEndpoint accepts *content.Hero, *content.Contact or
// *content.Settings.
func UpdateSectionEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		switch req := request.(type) {
		case *content.Hero:
			return svc.UpdateHero(req)
		case *content.Contact:
			return svc.UpdateContact(req)
		case *content.Settings:
			return svc.UpdateSettings(req)
		default:
			return nil, ErrInvalidRequest
		}
	}
}

func ItemsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		kind, ok := request.(content.Kind)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.Items(kind)
	}
}

type ItemRequest struct {
	Kind content.Kind
	ID   content.ItemID
}

func ItemEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(ItemRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.Item(req.Kind, req.ID)
	}
}

func CreateItemEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		item, ok := request.(content.Item)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.CreateItem(item)
	}
}

func UpdateItemEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		item, ok := request.(content.Item)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.UpdateItem(item)
	}
}

func DeleteItemEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(ItemRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return nil, svc.DeleteItem(req.Kind, req.ID)
	}
}

// ReorderRequest moves one item (From, To) or, when IDs is set, applies a
// full order.
type ReorderRequest struct {
	Kind content.Kind     `json:"-"`
	From *int             `json:"from"`
	To   *int             `json:"to"`
	IDs  []content.ItemID `json:"ids"`
}

func ReorderItemsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(ReorderRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		if len(req.IDs) > 0 {
			return svc.ArrangeItems(req.Kind, req.IDs)
		}

		if req.From == nil || req.To == nil {
			return nil, ErrInvalidRequest
		}

		return svc.ReorderItems(req.Kind, *req.From, *req.To)
	}
}

func TranslationsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		locale, ok := request.(string)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.Translations(locale)
	}
}

type TranslationRequest struct {
	Locale string `json:"-"`
	Key    string `json:"-"`
	Value  string `json:"value"`
}

func PutTranslationEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(TranslationRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.PutTranslation(req.Locale, req.Key, req.Value)
	}
}

func DeleteTranslationEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(TranslationRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return nil, svc.DeleteTranslation(req.Locale, req.Key)
	}
}

type ImportRequest struct {
	Locale   string
	Document map[string]any
}

type ImportResponse struct {
	Locale   string `json:"locale"`
	Imported int    `json:"imported"`
}

func ImportTranslationsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(ImportRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		n, err := svc.ImportTranslations(req.Locale, req.Document)
		if err != nil {
			return nil, err
		}

		return ImportResponse{req.Locale, n}, nil
	}
}

func ExportTranslationsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		locale, ok := request.(string)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.ExportTranslations(locale)
	}
}

func CoverageEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		return svc.Coverage()
	}
}

func SyncTranslationsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(SyncRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.SyncTranslations(ctx, req)
	}
}

type SignInResponse struct {
	Admin *Admin `json:"admin"`
	Token *Token `json:"token"`
}

type Token struct {
	Token     string    `json:"token"`
	ExpiredAt time.Time `json:"expired_at"`
}

func SignInEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		credential, ok := request.(string)
		if !ok {
			return nil, ErrInvalidRequest
		}

		admin, err := svc.SignIn(ctx, credential)
		if err != nil {
			return nil, err
		}

		return SignInResponse{Admin: admin}, nil
	}
}

// EventEndpoint reacts to content changes coming from the event bus; a
// change to site content triggers a translation sync.
func EventEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		e, ok := request.(*events.ContentChanged)
		if !ok {
			return nil, ErrInvalidRequest
		}

		if e.TranslationsOnly() {
			return nil, nil
		}

		return svc.SyncTranslations(ctx, SyncRequest{})
	}
}
