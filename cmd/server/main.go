package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freshbasket-backend/internal/config"
	"freshbasket-backend/internal/controller"
	"freshbasket-backend/internal/middleware"
	"freshbasket-backend/internal/rabbit"
	"freshbasket-backend/internal/razorpay"
	"freshbasket-backend/internal/repository"
	"freshbasket-backend/internal/service"
)

func main() {
	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.MongoDBName)

	// Repositorios
	orderRepo := repository.NewMongoOrderRepository(db)
	paymentRepo := repository.NewMongoPaymentRepository(db)
	checkoutRepo := repository.NewMongoCheckoutRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	adminRepo := repository.NewMongoAdminRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	businessRepo := repository.NewMongoBusinessOrderRepository(db)

	// Conexión a RabbitMQ (opcional: sin broker el backend sigue andando,
	// solo que no emite eventos)
	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("Error conectando a RabbitMQ: %v", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			log.Fatalf("Error creando canal en RabbitMQ: %v", err)
		}
		if err := rabbit.Setup(ch); err != nil {
			log.Fatalf("Error preparando RabbitMQ: %v", err)
		}
		events = rabbit.NewOrderPlacedPublisher(ch)
	}

	// Pasarela de pagos (opcional: sin credenciales los endpoints de
	// pasarela responden error, el resto del backend funciona)
	var gateway service.Gateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateway = razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	} else {
		log.Println("Razorpay sin configurar: pagos por pasarela deshabilitados")
	}

	// Servicios
	authService := service.NewAuthService(userRepo, adminRepo, cfg.JWTSecret)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, events)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, checkoutRepo, cartRepo, userRepo, gateway, events)
	businessService := service.NewBusinessOrderService(businessRepo, cartRepo, userRepo)
	statsService := service.NewStatsService(userRepo, productRepo, orderRepo, businessRepo)

	// Handlers
	authCtrl := controller.NewAuthController(authService)
	cartCtrl := controller.NewCartController(cartService)
	orderCtrl := controller.NewOrderController(orderService)
	paymentCtrl := controller.NewPaymentController(paymentService)
	businessCtrl := controller.NewBusinessOrderController(businessService)
	statsCtrl := controller.NewStatsController(statsService)

	// Router
	r := gin.Default()

	// Rutas públicas
	r.POST("/api/auth/register", authCtrl.Register)
	r.POST("/api/auth/login", authCtrl.Login)
	r.POST("/api/auth/admin/login", authCtrl.AdminLogin)

	// Rutas protegidas (requieren token)
	auth := r.Group("/api")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.POST("/auth/address", authCtrl.AddAddress)

	auth.GET("/cart", cartCtrl.GetCart)
	auth.POST("/cart", cartCtrl.AddToCart)
	auth.PUT("/cart", cartCtrl.UpdateItem)
	auth.DELETE("/cart/items/:itemId", cartCtrl.DeleteItem)

	auth.POST("/orders", orderCtrl.CreateOrder)
	auth.GET("/orders/mine", orderCtrl.GetMyOrders)
	auth.GET("/orders/:orderId", orderCtrl.GetOrder)
	auth.PUT("/orders/:orderId/cancel", orderCtrl.CancelOrder)
	auth.PUT("/orders/:orderId/deliveries/:subOrderId/cancel", orderCtrl.CancelSubOrder)

	auth.POST("/payments/order", paymentCtrl.CreateGatewayOrder)
	auth.POST("/payments/checkout", paymentCtrl.CreateCheckout)
	auth.POST("/payments/verify", paymentCtrl.VerifyPayment)

	auth.POST("/business-orders", businessCtrl.Create)
	auth.GET("/business-orders/mine", businessCtrl.GetMyOrders)

	// Rutas admin
	admin := auth.Group("/")
	admin.Use(middleware.AdminOnly())

	admin.GET("orders/admin/all", orderCtrl.GetAllOrders)
	admin.PUT("orders/admin/:orderId/status", orderCtrl.UpdateStatus)

	admin.GET("payments/admin/all", paymentCtrl.GetAllPayments)
	admin.POST("payments/admin/cod", paymentCtrl.RecordCODPayment)
	admin.PUT("payments/admin/cod/:paymentId", paymentCtrl.UpdateCODStatus)

	admin.GET("business-orders/admin/all", businessCtrl.GetAllOrders)
	admin.PUT("business-orders/admin/:orderId/quote", businessCtrl.SendQuote)
	admin.PUT("business-orders/admin/:orderId/status", businessCtrl.UpdateStatus)

	admin.GET("stats", statsCtrl.GetStats)

	// Ejecutar servidor
	log.Printf("freshbasket backend ejecutándose en puerto %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
