// Package server exposes the presentation-layer REST surface: customer
// listing, profile lookup, random selection, churn scoring and retention-plan
// generation. It only calls the store and pipeline public APIs.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/llm"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/store"
)

// DataStore is the slice of the store the API serves from.
type DataStore interface {
	ListCustomerIDs() ([]string, error)
	GetCustomerProfile(customerID string) (domain.CustomerRecord, error)
	PredictChurnProbability(customerID string) (float64, error)
	SampleRandomCustomerID() (string, error)
}

// PlanRunner runs the retention pipeline for one customer.
type PlanRunner interface {
	Run(ctx context.Context, customerID string) (domain.PipelineResult, error)
}

// Server holds the API dependencies.
type Server struct {
	data   DataStore
	runner PlanRunner
}

// New builds the API server.
func New(data DataStore, runner PlanRunner) *Server {
	return &Server{data: data, runner: runner}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	v1 := router.Group("/api/v1")
	{
		v1.GET("/customers", s.listCustomers)
		v1.GET("/customers/random", s.randomCustomer)
		v1.GET("/customers/:id", s.getCustomer)
		v1.GET("/customers/:id/churn-score", s.churnScore)
		v1.POST("/customers/:id/retention-plan", s.retentionPlan)
	}
	return router
}

func (s *Server) listCustomers(c *gin.Context) {
	ids, err := s.data.ListCustomerIDs()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"customer_ids": ids})
}

func (s *Server) randomCustomer(c *gin.Context) {
	id, err := s.data.SampleRandomCustomerID()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"customer_id": id})
}

func (s *Server) getCustomer(c *gin.Context) {
	profile, err := s.data.GetCustomerProfile(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, profile)
}

func (s *Server) churnScore(c *gin.Context) {
	id := c.Param("id")
	prob, err := s.data.PredictChurnProbability(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"customer_id": id, "churn_probability": prob})
}

func (s *Server) retentionPlan(c *gin.Context) {
	result, err := s.runner.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

// abortWithError maps the error taxonomy onto HTTP statuses: unknown customer
// is 404, a missing artifact means the backend is not provisioned (503), a
// schema mismatch is an operator error (500), and a collaborator failure is a
// bad upstream (502).
func abortWithError(c *gin.Context, err error) {
	var notFound *store.CustomerNotFoundError
	var missing *store.ArtifactMissingError
	var mismatch *store.SchemaMismatchError
	var collab *llm.CollaboratorError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &missing):
		status = http.StatusServiceUnavailable
	case errors.As(err, &mismatch):
		status = http.StatusInternalServerError
	case errors.As(err, &collab):
		status = http.StatusBadGateway
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
