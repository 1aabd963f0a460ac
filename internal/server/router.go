package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	menucontroller "fogon/internal/menu/controller"
	stockcontroller "fogon/internal/stock/controller"
)

func NewRouter(menuCtrl *menucontroller.MenuController, stockCtrl *stockcontroller.StockController, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/menu", menuCtrl.HandleGetMenu)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", menuCtrl.HandleCreateProduct)
		r.Patch("/{productId}", menuCtrl.HandleUpdateProduct)
		r.Delete("/{productId}", menuCtrl.HandleDeleteProduct)
		r.Get("/{productId}/movements", stockCtrl.HandleListMovements)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Post("/", menuCtrl.HandleCreateCategory)
		r.Patch("/{categoryId}", menuCtrl.HandleUpdateCategory)
		r.Delete("/{categoryId}", menuCtrl.HandleDeleteCategory)
	})

	r.Route("/stock", func(r chi.Router) {
		r.Post("/movements", stockCtrl.HandleRecordMovement)
		r.Post("/batches", stockCtrl.HandleRecordBatch)
		r.Post("/productions", stockCtrl.HandleRecordProduction)
	})

	return r
}
