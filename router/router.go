package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/controllers"
	"github.com/yeremiapane/bakery-app/events"
	"github.com/yeremiapane/bakery-app/middlewares"
	"github.com/yeremiapane/bakery-app/services"
)

// SetupRouter merakit seluruh route. Gateway boleh nil (endpoint
// checkout akan menolak dengan 503).
func SetupRouter(db *gorm.DB, hub *events.Hub, gateway services.CheckoutGateway) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi services + controllers
	allocator := services.NewOrderNumberAllocator(db)
	ledger := services.NewLedgerService(db)

	userCtrl := controllers.NewUserController(db)
	clientCtrl := controllers.NewClientController(db)
	orderCtrl := controllers.NewOrderController(db, hub, allocator, ledger)
	orderCtrl.Gateway = gateway
	itemCtrl := controllers.NewOrderItemController(db, hub, ledger)
	trxCtrl := controllers.NewTransactionController(db, ledger)
	streamCtrl := controllers.NewStreamController(hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------

	// Event stream untuk device produksi (SSE utama, websocket cadangan).
	// Auth lewat query param karena EventSource tidak bisa set header.
	stream := r.Group("/")
	stream.Use(middlewares.AuthMiddleware())
	{
		stream.GET("/events/stream", streamCtrl.SSEHandler)
		stream.GET("/ws", streamCtrl.WSHandler)
	}

	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// CLIENTS (staff/admin)
	auth.GET("/clients", clientCtrl.GetAllClients)
	auth.POST("/clients", clientCtrl.CreateClient)
	auth.GET("/clients/:client_id", clientCtrl.GetClientByID)
	auth.PATCH("/clients/:client_id", clientCtrl.UpdateClient)
	auth.DELETE("/clients/:client_id", clientCtrl.DeleteClient)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.POST("/orders", orderCtrl.CreateOrder)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	auth.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)
	auth.POST("/orders/:order_id/payment", orderCtrl.TogglePayment)
	auth.POST("/orders/:order_id/checkout", orderCtrl.CreateCheckout)

	// ORDER ITEMS (produksi)
	auth.POST("/orders/:order_id/items", itemCtrl.AddItem)
	auth.PATCH("/order-items/:item_id/status", itemCtrl.UpdateItemStatus)
	auth.PATCH("/order-items/:item_id/notes", itemCtrl.UpdateItemNotes)
	auth.DELETE("/order-items/:item_id", itemCtrl.DeleteItem)

	// Tampilan produksi untuk baker
	auth.GET("/production/items", itemCtrl.GetProductionItems)

	// LEDGER (admin)
	ledgerGroup := auth.Group("/ledger")
	ledgerGroup.Use(middlewares.RequireRole("admin"))
	{
		ledgerGroup.GET("/transactions", trxCtrl.GetAllTransactions)
		ledgerGroup.POST("/expenses", trxCtrl.CreateExpense)
		ledgerGroup.DELETE("/transactions/:trx_id", trxCtrl.DeleteTransaction)
		ledgerGroup.GET("/summary", trxCtrl.GetLedgerSummary)
	}

	return r
}
