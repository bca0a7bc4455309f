package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/rakibuldev/piprapay-gobilling/internal/adapter"
	"github.com/rakibuldev/piprapay-gobilling/internal/audit"
	"github.com/rakibuldev/piprapay-gobilling/internal/db"
	"github.com/rakibuldev/piprapay-gobilling/internal/gateway"
	"github.com/rakibuldev/piprapay-gobilling/internal/handlers"
	"github.com/rakibuldev/piprapay-gobilling/internal/services"
)

func main() {
	// Load .env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	// Connect to MongoDB
	uri := os.Getenv("MONGOURI")
	if uri == "" {
		log.Fatal("MONGOURI environment variable not set")
	}
	client, err := db.Connect(uri)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Println("Successfully connected to MongoDB")

	database := client.Database("billingdb")

	// Gateway configuration; missing key, url or currency is fatal.
	cfg := gateway.Config{
		APIKey:       os.Getenv("PIPRAPAY_API_KEY"),
		APIURL:       os.Getenv("PIPRAPAY_API_URL"),
		Currency:     os.Getenv("PIPRAPAY_CURRENCY"),
		AutoRedirect: os.Getenv("PIPRAPAY_AUTO_REDIRECT") == "true",
		ReturnURL:    os.Getenv("RETURN_URL"),
		CancelURL:    os.Getenv("CANCEL_URL"),
		NotifyURL:    os.Getenv("NOTIFY_URL"),
	}
	gatewayClient, err := gateway.NewClient(cfg)
	if err != nil {
		log.Fatalf("Gateway configuration error: %v", err)
	}

	// Read after godotenv.Load so a secret from .env is picked up.
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Printf("Warning: JWT_SECRET not set; admin tokens will be signed with an empty key")
	}

	ipnLogPath := os.Getenv("IPN_LOG_PATH")
	if ipnLogPath == "" {
		ipnLogPath = "piprapay_ipn_log.txt"
	}
	auditLog := audit.NewFileLogger(ipnLogPath)

	// Initialize services, adapter and handlers
	invoiceService := services.NewInvoiceService(database)
	transactionService := services.NewTransactionService(database)
	clientService := services.NewClientService(database)
	staffService := services.NewStaffService(database)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := transactionService.EnsureIndexes(indexCtx); err != nil {
		log.Printf("Warning: failed to ensure transaction indexes: %v", err)
	}
	cancelIndex()

	piprapay, err := adapter.NewPipraPay(cfg, gatewayClient, invoiceService, transactionService, clientService, auditLog)
	if err != nil {
		log.Fatalf("Failed to construct PipraPay adapter: %v", err)
	}

	checkoutHandler := handlers.NewCheckoutHandler(piprapay)
	ipnHandler := handlers.NewIPNHandler(piprapay, transactionService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, clientService, jwtSecret)
	clientHandler := handlers.NewClientHandler(clientService, jwtSecret)
	transactionHandler := handlers.NewTransactionHandler(transactionService, jwtSecret)
	staffHandler := handlers.NewStaffHandler(staffService, jwtSecret)

	// Set up router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/checkout/{invoiceID}", checkoutHandler.RenderCheckout).Methods("GET")
	router.HandleFunc("/ipn", ipnHandler.HandleIPN).Methods("POST")

	router.HandleFunc("/api/staff", staffHandler.CreateStaff).Methods("POST")
	router.HandleFunc("/api/login", staffHandler.Login).Methods("POST")
	router.HandleFunc("/api/client", clientHandler.CreateClient).Methods("POST")
	router.HandleFunc("/api/invoice", invoiceHandler.CreateInvoice).Methods("POST")
	router.HandleFunc("/api/transactions", transactionHandler.GetTransactions).Methods("GET")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(server.ListenAndServe())
}
