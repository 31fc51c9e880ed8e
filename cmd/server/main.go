package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/saveagri/saveagri-backend/internal/auth"
	"github.com/saveagri/saveagri-backend/internal/config"
	"github.com/saveagri/saveagri-backend/internal/database"
	"github.com/saveagri/saveagri-backend/internal/geo"
	"github.com/saveagri/saveagri-backend/internal/handlers"
	"github.com/saveagri/saveagri-backend/internal/middleware"
	"github.com/saveagri/saveagri-backend/internal/routes"
	"github.com/saveagri/saveagri-backend/internal/services"
	"github.com/saveagri/saveagri-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to PostgreSQL...")
	db, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Redis is optional; without it the in-process limiter takes over.
	var redisLimiter func(http.Handler) http.Handler
	if cfg.RedisURI != "" {
		log.Printf("Connecting to Redis...")
		redisClient, err := database.ConnectRedis(cfg.RedisURI)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
		redisLimiter = middleware.RateLimit(redisClient)
	}

	var uploads services.Uploader
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cloudinaryService, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Image uploads will not be available")
		} else {
			uploads = cloudinaryService
			log.Println("Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Image uploads will not be available")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	throttle := auth.NewLoginThrottle()
	geocoder := geo.NewNominatimClient(cfg.NominatimURL, cfg.GeocoderCountry)

	users := store.NewPostgresUserStore(db)
	farmers := store.NewPostgresFarmerStore(db)
	products := store.NewPostgresProductStore(db)
	favorites := store.NewPostgresFavoriteStore(db)
	ratings := store.NewPostgresRatingStore(db)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
	}
	if redisLimiter != nil {
		r.Use(redisLimiter)
	} else {
		r.Use(middleware.GlobalRateLimit)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, routes.Handlers{
		Users:     handlers.NewUserHandler(users, tokens, throttle),
		Farmers:   handlers.NewFarmerHandler(farmers, users, geocoder, uploads),
		Products:  handlers.NewProductHandler(products, farmers, uploads),
		Favorites: handlers.NewFavoriteHandler(favorites, farmers),
		Ratings:   handlers.NewRatingHandler(ratings, farmers),
		Tokens:    tokens,
	})

	log.Printf("Save Agri backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
