package http

import (
	"errors"
	"net/http"

	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/services"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	search := sanitizeInput(r.URL.Query().Get("search"))

	qctx, cancel := withQueryTimeout(ctx)
	defer cancel()
	products, err := s.products.List(qctx, search)
	if err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "List products failed", err, log.OpList, nil)
		writeMessage(w, http.StatusInternalServerError, "Error retrieving products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var p core.Product
	if err := DecodeJSONBody(w, r, &p); err != nil {
		logger.WarnContext(ctx, "Invalid product body", log.FieldError, err)
		BadRequestError("Invalid request body").Write(w)
		return
	}
	p.ProductID = sanitizeInput(p.ProductID)
	p.Name = sanitizeInput(p.Name)

	qctx, cancel := withQueryTimeout(ctx)
	defer cancel()
	created, err := s.products.Create(qctx, p)
	switch {
	case errors.Is(err, services.ErrInvalidProduct):
		logger.WarnContext(ctx, "Product rejected", log.FieldError, err, "error_type", log.ErrorTypeValidation)
		UnprocessableEntityError(err.Error()).Write(w)
		return
	case err != nil:
		log.NewStructuredLogger(logger).LogError(ctx, "Create product failed", err, log.OpCreate, nil)
		writeMessage(w, http.StatusInternalServerError, "Error creating product")
		return
	}

	logger.InfoContext(ctx, "Product created", log.FieldProductID, created.ProductID, log.FieldOperation, log.OpCreate)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qctx, cancel := withQueryTimeout(ctx)
	defer cancel()
	users, err := s.users.ListUsers(qctx)
	if err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "List users failed", err, log.OpList, nil)
		writeMessage(w, http.StatusInternalServerError, "Error retrieving users")
		return
	}
	if users == nil {
		users = []core.User{}
	}

	writeJSON(w, http.StatusOK, users)
}
