package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/handlers"
	"github.com/Skotchmaster/pos_engine/internal/identity"
)

type Deps struct {
	JWTSecret       []byte
	CartHandler     *handlers.CartHandler
	TabHandler      *handlers.TabHandler
	TableHandler    *handlers.TableHandler
	CheckoutHandler *handlers.CheckoutHandler
	CatalogHandler  *handlers.CatalogHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1", identity.Middleware(d.JWTSecret))

	cart := v1.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.POST("/load", d.CartHandler.LoadSession)
	cart.POST("/logout", d.CartHandler.Logout)
	cart.DELETE("/:variantId", d.CartHandler.DeleteOneFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)

	tabs := v1.Group("/tabs")
	tabs.GET("", d.TabHandler.ListTabs)
	tabs.POST("", d.TabHandler.CreateTab)
	tabs.POST("/transfer", d.TabHandler.TransferItems)
	tabs.POST("/:id/park", d.TabHandler.ParkCart)
	tabs.POST("/:id/load", d.TabHandler.LoadTab)
	tabs.POST("/:id/save", d.TabHandler.SaveTab)
	tabs.DELETE("/:id", d.TabHandler.CloseTab)

	tables := v1.Group("/tables")
	tables.GET("", d.TableHandler.ListTables)
	tables.POST("/sync", d.TableHandler.SyncTable)
	tables.POST("/:id/assign", d.TableHandler.AssignTable)
	tables.POST("/:id/release", d.TableHandler.ReleaseTable)

	v1.POST("/checkout", d.CheckoutHandler.Checkout)
	v1.GET("/catalog/makable", d.CatalogHandler.Makable)
	v1.GET("/transactions/search", d.SearchHandler.SearchTransactions)
}
