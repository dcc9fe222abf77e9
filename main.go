package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"collab-project/backend/management-service/handlers"
	"collab-project/backend/management-service/logging"
	"collab-project/backend/management-service/middleware"
	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/repositories"
	"collab-project/backend/management-service/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var startTime = time.Now()

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Absent documents and duplicate keys are business outcomes, not
		// signs of a failing store.
		IsSuccessful: func(err error) bool {
			return err == nil || err == mongo.ErrNoDocuments || mongo.IsDuplicateKeyError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logging.Logger.Warnf("Circuit breaker %s changed state from %v to %v", name, from, to)
		},
	})
}

func ensureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.Collection("collaborators").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on collaborator email: %v", err)
	}

	_, err = db.Collection("memberships").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "projectId", Value: 1}, {Key: "collaboratorId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on memberships: %v", err)
	}

	_, err = db.Collection("areas").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"name": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on area name: %v", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logging.InitLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(getEnv("MONGO_URI", "mongodb://localhost:27017")))
	if err != nil {
		log.Fatal("Database connection failed:", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("MongoDB connection error:", err)
	}
	fmt.Println("Connected to MongoDB!")

	db := client.Database(getEnv("MONGO_DB", "management_db"))
	if err := ensureIndexes(db); err != nil {
		log.Fatal(err)
	}

	projectRepo := repositories.NewProjectRepository(db.Collection("projects"), newBreaker("projects"))
	membershipRepo := repositories.NewMembershipRepository(db.Collection("memberships"), newBreaker("memberships"))
	collaboratorRepo := repositories.NewCollaboratorRepository(db.Collection("collaborators"), newBreaker("collaborators"))
	areaRepo := repositories.NewAreaRepository(db.Collection("areas"), newBreaker("areas"))

	projectService := services.NewProjectService(projectRepo, membershipRepo, collaboratorRepo)
	collaboratorService := services.NewCollaboratorService(collaboratorRepo, membershipRepo)
	authService := services.NewAuthService(collaboratorRepo)
	areaService := services.NewAreaService(areaRepo)

	if err := areaService.Seed(context.TODO()); err != nil {
		log.Fatal("Failed to seed areas:", err)
	}

	projectHandler := handlers.NewProjectHandler(projectService)
	collaboratorHandler := handlers.NewCollaboratorHandler(collaboratorService)
	authHandler := handlers.NewAuthHandler(authService)
	areaHandler := handlers.NewAreaHandler(areaService)

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.JWTAuth(h)
	}
	gestor := func(h http.HandlerFunc) http.Handler {
		return middleware.JWTAuth(middleware.RequireRole(models.RoleGestor)(h))
	}

	r := mux.NewRouter()

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/areas", areaHandler.ListAreas).Methods("GET")

	r.Handle("/collaborators", authed(collaboratorHandler.ListCollaborators)).Methods("GET")
	r.Handle("/collaborators/{id}", authed(collaboratorHandler.GetCollaborator)).Methods("GET")
	r.Handle("/collaborators", gestor(collaboratorHandler.CreateCollaborator)).Methods("POST")
	r.Handle("/collaborators/{id}", gestor(collaboratorHandler.UpdateCollaborator)).Methods("PUT")
	r.Handle("/collaborators/{id}", gestor(collaboratorHandler.DeleteCollaborator)).Methods("DELETE")

	r.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	r.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	r.Handle("/projects", gestor(projectHandler.CreateProject)).Methods("POST")
	r.Handle("/projects/{id}", gestor(projectHandler.UpdateProject)).Methods("PUT")
	r.Handle("/projects/{id}", gestor(projectHandler.DeleteProject)).Methods("DELETE")
	r.Handle("/projects/{id}/members", gestor(projectHandler.AddMember)).Methods("POST")
	r.Handle("/projects/{id}/members/{collaboratorId}", gestor(projectHandler.RemoveMember)).Methods("DELETE")
	r.Handle("/projects/{id}/complete", gestor(projectHandler.CompleteProject)).Methods("POST")
	r.Handle("/projects/{id}/cancel", gestor(projectHandler.CancelProject)).Methods("POST")
	r.Handle("/projects/{id}/reopen", gestor(projectHandler.ReopenProject)).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"uptime": time.Since(startTime).Seconds(),
		})
	}).Methods("GET")

	corsRouter := enableCORS(r)

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      corsRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	fmt.Println("Management service server running on http://localhost:" + port)
	log.Fatal(srv.ListenAndServe())
}

// enableCORS allows CORS for the frontend application
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
