package itemsvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/infra/logging"
	http_ "github.com/mkrupp/wtwr/internal/infra/transport/http"
)

// ItemDeletedMessage confirms a successful delete.
const ItemDeletedMessage = "Item deleted successfully"

const itemIDParam = "itemId"

// HTTPTransport handles HTTP requests for clothing items.
type HTTPTransport struct {
	itemSvc *ItemService
	authn   *http_.Authenticator
	log     logging.Logger
	cfg     http_.HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport. authn gates every route but
// the listing.
func NewHTTPTransport(
	itemSvc *ItemService,
	authn *http_.Authenticator,
	cfg http_.HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		itemSvc: itemSvc,
		authn:   authn,
		log:     logging.GetLogger("svc.itemsvc.http_transport"),
		cfg:     cfg,
	}
}

// Routes implements http_.HTTPTransport:
// - GET /items: List all items
// - POST /items: Create an item owned by the caller
// - PUT /items/{itemId}: Replace the image of an owned item
// - DELETE /items/{itemId}: Delete an owned item
// - PUT /items/{itemId}/likes: Like an item
// - DELETE /items/{itemId}/likes: Remove a like.
func (ht *HTTPTransport) Routes(rt *http_.Router) {
	rt.HandleFunc("GET /items", ht.HandleList)
	rt.HandleFunc("POST /items", ht.authn.Require(ht.HandleCreate))
	rt.HandleFunc("PUT /items/{itemId}", ht.authn.Require(ht.HandleUpdate))
	rt.HandleFunc("DELETE /items/{itemId}", ht.authn.Require(ht.HandleDelete))
	rt.HandleFunc("PUT /items/{itemId}/likes", ht.authn.Require(ht.HandleLike))
	rt.HandleFunc("DELETE /items/{itemId}/likes", ht.authn.Require(ht.HandleUnlike))
}

// HandleList returns all items.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := ht.itemSvc.ListItems(r.Context())
	if err != nil {
		http_.WriteError(w, err)

		return
	}

	if err := http_.WriteJSON(w, http.StatusOK, items); err != nil {
		ht.log.DebugContext(r.Context(), "write response failed", "error", err)
	}
}

// HandleCreate creates an item. Expects a JSON body: name, weather, imageUrl.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	_ = ht.handle(w, r, "create item", func(ctx context.Context) (int, any, error) {
		var newItem domain.NewClothingItem
		if err := http_.DecodeJSON(w, r, ht.cfg.MaxBodyBytes, &newItem); err != nil {
			return 0, nil, fmt.Errorf("decode body: %w", err)
		}

		created, err := ht.itemSvc.CreateItem(ctx, principal, newItem)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusCreated, http_.DataResponse{Data: created}, nil
	})
}

// HandleUpdate replaces an item's image. Expects a JSON body: imageUrl.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	_ = ht.handle(w, r, "update item", func(ctx context.Context) (int, any, error) {
		var update domain.ClothingItemUpdate
		if err := http_.DecodeJSON(w, r, ht.cfg.MaxBodyBytes, &update); err != nil {
			return 0, nil, fmt.Errorf("decode body: %w", err)
		}

		updated, err := ht.itemSvc.UpdateItem(ctx, principal, r.PathValue(itemIDParam), update)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, http_.DataResponse{Data: updated}, nil
	})
}

// HandleDelete deletes an item.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	_ = ht.handle(w, r, "delete item", func(ctx context.Context) (int, any, error) {
		if err := ht.itemSvc.DeleteItem(ctx, principal, r.PathValue(itemIDParam)); err != nil {
			return 0, nil, err
		}

		return http.StatusOK, http_.MessageResponse{Message: ItemDeletedMessage}, nil
	})
}

// HandleLike adds the caller's like.
func (ht *HTTPTransport) HandleLike(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	_ = ht.handle(w, r, "like item", func(ctx context.Context) (int, any, error) {
		liked, err := ht.itemSvc.LikeItem(ctx, principal, r.PathValue(itemIDParam))
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, http_.DataResponse{Data: liked}, nil
	})
}

// HandleUnlike removes the caller's like.
func (ht *HTTPTransport) HandleUnlike(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	_ = ht.handle(w, r, "unlike item", func(ctx context.Context) (int, any, error) {
		unliked, err := ht.itemSvc.UnlikeItem(ctx, principal, r.PathValue(itemIDParam))
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, http_.DataResponse{Data: unliked}, nil
	})
}

// handle runs fn and writes either its result or its error.
func (ht *HTTPTransport) handle(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context) (int, any, error),
) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			http_.WriteError(w, err)
			log.DebugContext(ctx, op+" failed", "error", err)
		} else {
			log.DebugContext(ctx, op+" done")
		}
	}(r.Context())

	status, body, err := fn(r.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return http_.WriteJSON(w, status, body)
}
