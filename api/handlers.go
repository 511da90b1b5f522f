/*
handlers.go - HTTP API handlers for the Modelo 210 declaration system

PURPOSE:
  Exposes client, property and tax-calculation operations via REST API.
  Handles HTTP request/response, JSON serialization, and delegates all
  financial computation to the modelo210 engine.

ENDPOINTS:
  Clients:
    GET    /api/clients                     List clients (?q= search)
    POST   /api/clients                     Create client
    GET    /api/clients/{id}                Get client
    PUT    /api/clients/{id}                Update client
    DELETE /api/clients/{id}                Deactivate client
    GET    /api/clients/{id}/properties     List the client's properties
    POST   /api/clients/{id}/properties     Register a property
    GET    /api/clients/{id}/declarations   Declarations with total due (?year=)
    GET    /api/clients/{id}/negative-income Pending negative income records

  Properties:
    GET/PUT/DELETE /api/properties/{id}
    GET/POST       /api/properties/{id}/coowners
    DELETE         /api/properties/{id}/coowners/{clientID}
    GET/POST       /api/properties/{id}/contracts
    GET/POST       /api/properties/{id}/documents
    GET/POST       /api/properties/{id}/expenses

  Contracts and documents:
    GET/PUT /api/contracts/{id}
    POST    /api/contracts/{id}/cancel
    GET/POST /api/contracts/{id}/payments
    PUT/DELETE /api/documents/{id}
    POST    /api/documents/{id}/validate

  Calculations:
    GET  /api/properties/{id}/rental-days            (?year=)
    POST /api/properties/{id}/amortizable-value      persists derived fields
    POST /api/properties/{id}/amortization           {"year": N}
    GET  /api/properties/{id}/deductible-expenses    (?year=)
    POST /api/properties/{id}/rental-result          persists declaration
    GET  /api/properties/{id}/imputation             preview (?year=&days=)
    POST /api/properties/{id}/imputation/calculate   one declaration per owner
    POST /api/negative-income/{id}/compensate
    POST /api/admin/expire-negative-income

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine calculators, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, engine client errors, duplicates, exceeded limits
  - 404: Record not found
  - 500: Internal errors

  Calculation endpoints persist nothing when the engine rejects the input:
  every store write happens after all computation has succeeded.

SEE ALSO:
  - dto.go: Request/response data structures
  - modelo210: The pure calculation engine
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/earnmomey786-cloud/crm210/modelo210"
	"github.com/earnmomey786-cloud/crm210/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// CLIENT ENDPOINTS
// =============================================================================

// ListClients returns all active clients, filtered by ?q= when present.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	var (
		clients []sqlite.Client
		err     error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		clients, err = h.Store.SearchClients(r.Context(), q)
	} else {
		clients, err = h.Store.ListClients(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list clients", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTOs(clients))
}

// CreateClient registers a new client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validateClientRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid client", err)
		return
	}

	client, err := h.Store.CreateClient(r.Context(), clientFromRequest(req))
	if err != nil {
		writeStoreError(w, "failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(*client))
}

// GetClient returns one client by ID.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	client, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		writeStoreError(w, "failed to get client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// UpdateClient replaces a client's editable fields.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validateClientRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid client", err)
		return
	}

	c := clientFromRequest(req)
	c.ID = id
	client, err := h.Store.UpdateClient(r.Context(), c)
	if err != nil {
		writeStoreError(w, "failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// DeleteClient deactivates a client. The row and its history remain.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteClient(r.Context(), id); err != nil {
		writeStoreError(w, "failed to delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClientProperties returns the client's active properties.
func (h *Handler) ListClientProperties(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	props, err := h.Store.ListPropertiesByClient(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list properties", err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyDTOs(props))
}

// CreateClientProperty registers a property owned by the client.
func (h *Handler) CreateClientProperty(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req PropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	p, err := propertyFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property", err)
		return
	}
	p.ClientID = clientID

	// The owner must exist.
	if _, err := h.Store.GetClient(r.Context(), clientID); err != nil {
		writeStoreError(w, "failed to resolve client", err)
		return
	}

	created, err := h.Store.CreateProperty(r.Context(), p)
	if err != nil {
		writeStoreError(w, "failed to create property", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyDTO(*created))
}

// ListClientDeclarations returns the client's declarations, newest first,
// with the total tax due across them. ?year= restricts to one fiscal year.
func (h *Handler) ListClientDeclarations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	year := yearQuery(r)

	decls, err := h.Store.ListDeclarationsByClient(r.Context(), id, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list declarations", err)
		return
	}

	dtos := make([]DeclarationDTO, len(decls))
	total := decimal.Zero
	for i, d := range decls {
		dtos[i] = toDeclarationDTO(d.Declaration, d.PropertyAddress)
		total = total.Add(d.TaxDue)
	}

	writeJSON(w, http.StatusOK, ClientDeclarationsDTO{
		ClientID:     id,
		Year:         year,
		Declarations: dtos,
		TotalTaxDue:  modelo210.Round2(total).StringFixed(2),
	})
}

// ListClientNegativeIncome returns the client's pending negative income
// records, oldest origin year first.
func (h *Handler) ListClientNegativeIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	records, err := h.Store.ListPendingNegativeIncome(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list negative income", err)
		return
	}
	dtos := make([]NegativeIncomeDTO, len(records))
	for i, rec := range records {
		dtos[i] = toNegativeIncomeDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PROPERTY ENDPOINTS
// =============================================================================

// GetProperty returns one property by ID.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Store.GetProperty(r.Context(), id)
	if err != nil {
		writeStoreError(w, "failed to get property", err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyDTO(*p))
}

// UpdateProperty replaces a property's editable fields. Derived amortization
// values survive the update; a new amortizable-value run refreshes them.
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req PropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	p, err := propertyFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property", err)
		return
	}
	p.ID = id

	updated, err := h.Store.UpdateProperty(r.Context(), p)
	if err != nil {
		writeStoreError(w, "failed to update property", err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyDTO(*updated))
}

// DeleteProperty deactivates a property.
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteProperty(r.Context(), id); err != nil {
		writeStoreError(w, "failed to delete property", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCoOwners returns the active co-owner shares for a property.
func (h *Handler) ListCoOwners(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	owners, err := h.Store.ListCoOwners(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list co-owners", err)
		return
	}
	dtos := make([]CoOwnerDTO, len(owners))
	for i, o := range owners {
		dtos[i] = toCoOwnerDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCoOwners registers co-owner shares. The whole batch is validated
// against the 100% ceiling and stored atomically.
func (h *Handler) CreateCoOwners(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CreateCoOwnersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Shares) == 0 {
		writeError(w, http.StatusBadRequest, "no shares given", nil)
		return
	}

	shares := make([]sqlite.CoOwner, len(req.Shares))
	for i, s := range req.Shares {
		pct, err := parseAmount("percentage", s.Percentage)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid share", err)
			return
		}
		if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
			writeError(w, http.StatusBadRequest, "invalid share",
				fmt.Errorf("percentage must be in (0, 100], got %s", pct))
			return
		}
		start, err := parseDay("start_date", s.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid share", err)
			return
		}
		shares[i] = sqlite.CoOwner{
			PropertyID: id,
			ClientID:   s.ClientID,
			Percentage: pct,
			StartDate:  start,
		}
	}

	if err := h.Store.CreateCoOwners(r.Context(), id, shares); err != nil {
		writeStoreError(w, "failed to create co-owners", err)
		return
	}

	owners, err := h.Store.ListCoOwners(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list co-owners", err)
		return
	}
	dtos := make([]CoOwnerDTO, len(owners))
	for i, o := range owners {
		dtos[i] = toCoOwnerDTO(o)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// DeleteCoOwner removes one client's share from a property.
func (h *Handler) DeleteCoOwner(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}
	if err := h.Store.DeleteCoOwner(r.Context(), propertyID, clientID); err != nil {
		writeStoreError(w, "failed to delete co-owner", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CONTRACT AND PAYMENT ENDPOINTS
// =============================================================================

// ListContracts returns a property's contracts, newest first. Cancelled
// contracts appear only with ?include_cancelled=true.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	includeCancelled := r.URL.Query().Get("include_cancelled") == "true"
	contracts, err := h.Store.ListContractsByProperty(r.Context(), id, includeCancelled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contracts", err)
		return
	}
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateContract registers a rental contract. Overlap with the property's
// existing non-cancelled contracts is rejected before anything is stored.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	contract, err := contractFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract", err)
		return
	}
	contract.PropertyID = id

	existing, err := h.Store.ListContractsByProperty(r.Context(), id, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contracts", err)
		return
	}
	candidates := append(sqlite.EngineContracts(existing), contract.RentalContract)
	if pairs := modelo210.DetectOverlaps(candidates); len(pairs) > 0 {
		writeError(w, http.StatusBadRequest, "contract overlaps an existing contract",
			&modelo210.OverlapError{Pairs: pairs})
		return
	}

	created, err := h.Store.CreateContract(r.Context(), contract)
	if err != nil {
		writeStoreError(w, "failed to create contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(*created))
}

// GetContract returns one contract by ID.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Store.GetContract(r.Context(), id)
	if err != nil {
		writeStoreError(w, "failed to get contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*c))
}

// UpdateContract replaces a contract's editable fields.
func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	contract, err := contractFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract", err)
		return
	}
	contract.ID = id

	updated, err := h.Store.UpdateContract(r.Context(), contract)
	if err != nil {
		writeStoreError(w, "failed to update contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*updated))
}

// CancelContract marks a contract cancelled. Cancelled contracts never
// count toward rented days.
func (h *Handler) CancelContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CancelContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	c, err := h.Store.CancelContract(r.Context(), id, req.Reason)
	if err != nil {
		writeStoreError(w, "failed to cancel contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*c))
}

// ListPayments returns a contract's payments, newest first. ?year= filters
// by the fiscal year the rent accrues to.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payments, err := h.Store.ListPaymentsByContract(r.Context(), id, yearQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payments", err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment registers a rent payment against a contract.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid payment amount", err)
		return
	}
	date, err := parseDay("payment_date", req.PaymentDate)
	if err != nil || date.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid payment date", err)
		return
	}
	fiscalYear := req.FiscalYear
	if fiscalYear == 0 {
		fiscalYear = date.Year()
	}

	// The contract must exist.
	if _, err := h.Store.GetContract(r.Context(), id); err != nil {
		writeStoreError(w, "failed to resolve contract", err)
		return
	}

	created, err := h.Store.CreatePayment(r.Context(), sqlite.Payment{
		ContractID:  id,
		Amount:      amount,
		PaymentDate: date,
		FiscalYear:  fiscalYear,
	})
	if err != nil {
		writeStoreError(w, "failed to create payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(*created))
}

// =============================================================================
// DOCUMENT AND EXPENSE ENDPOINTS
// =============================================================================

// ListDocuments returns a property's acquisition documents.
// ?validated=true restricts to validated ones.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	validatedOnly := r.URL.Query().Get("validated") == "true"
	docs, err := h.Store.ListDocumentsByProperty(r.Context(), id, validatedOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents", err)
		return
	}
	dtos := make([]DocumentDTO, len(docs))
	for i, d := range docs {
		dtos[i] = toDocumentDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDocuments registers a batch of acquisition documents. Documents
// entered through the batch are validated on entry.
func (h *Handler) CreateDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CreateDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "no documents given", nil)
		return
	}

	docs := make([]sqlite.Document, len(req.Documents))
	for i, d := range req.Documents {
		doc, err := documentFromRequest(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid document", err)
			return
		}
		docs[i] = doc
	}

	created, err := h.Store.CreateDocuments(r.Context(), id, docs)
	if err != nil {
		writeStoreError(w, "failed to create documents", err)
		return
	}
	dtos := make([]DocumentDTO, len(created))
	for i, d := range created {
		dtos[i] = toDocumentDTO(d)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// UpdateDocument replaces a document's type, amount and date.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	doc, err := documentFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document", err)
		return
	}
	doc.ID = id

	updated, err := h.Store.UpdateDocument(r.Context(), doc)
	if err != nil {
		writeStoreError(w, "failed to update document", err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(*updated))
}

// ValidateDocument marks a document validated and stamps when.
func (h *Handler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.Store.ValidateDocument(r.Context(), id)
	if err != nil {
		writeStoreError(w, "failed to validate document", err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(*doc))
}

// DeleteDocument removes a document permanently.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteDocument(r.Context(), id); err != nil {
		writeStoreError(w, "failed to delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListExpenses returns a property's expenses, ?year= filters by expense date.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	expenses, err := h.Store.ListExpensesByProperty(r.Context(), id, yearQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list expenses", err)
		return
	}
	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateExpense registers a property expense.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid expense amount", err)
		return
	}
	date, err := parseDay("date", req.Date)
	if err != nil || date.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid expense date", err)
		return
	}

	created, err := h.Store.CreateExpense(r.Context(), sqlite.ExpenseRecord{
		Expense: modelo210.Expense{
			PropertyID:  id,
			Type:        modelo210.ExpenseType(req.Type),
			Description: req.Description,
			Amount:      amount,
			Date:        date,
			Validated:   req.Validated,
		},
	})
	if err != nil {
		writeStoreError(w, "failed to create expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(*created))
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

// RentalDays computes the rented-day breakdown for a property and year.
func (h *Handler) RentalDays(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.calcRentalDays(r.Context(), id, yearQuery(r))
	if err != nil {
		writeDomainError(w, "rental day calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalDaysDTO(result))
}

// AmortizableValue computes a property's depreciable base from its validated
// acquisition documents and persists the derived values onto the property.
func (h *Handler) AmortizableValue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	p, err := h.Store.GetProperty(ctx, id)
	if err != nil {
		writeStoreError(w, "failed to get property", err)
		return
	}
	docs, err := h.Store.ListDocumentsByProperty(ctx, id, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents", err)
		return
	}

	result, err := modelo210.CalcAmortizableValue(p.Property, sqlite.EngineDocuments(docs))
	if err != nil {
		writeDomainError(w, "amortizable value calculation failed", err)
		return
	}

	_, err = h.Store.UpdatePropertyAmortization(ctx, id,
		result.TotalAcquisitionValue,
		result.Cadastral.ConstructionPct,
		result.AmortizableValue,
		result.AnnualAmortization)
	if err != nil {
		writeStoreError(w, "failed to persist amortization values", err)
		return
	}
	writeJSON(w, http.StatusOK, toAmortizableValueDTO(result))
}

// Amortization prorates the annual amortization by rented days for a year
// and splits it across the property's owners.
func (h *Handler) Amortization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req YearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	ctx := r.Context()

	p, err := h.Store.GetProperty(ctx, id)
	if err != nil {
		writeStoreError(w, "failed to get property", err)
		return
	}
	days, err := h.calcRentalDays(ctx, id, req.Year)
	if err != nil {
		writeDomainError(w, "rental day calculation failed", err)
		return
	}
	owners, err := h.ownerShares(ctx, p)
	if err != nil {
		writeStoreError(w, "failed to resolve owners", err)
		return
	}

	result, err := modelo210.CalcAmortization(p.Property, days.TotalRentedDays, owners, days.Year)
	if err != nil {
		writeDomainError(w, "amortization calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toAmortizationDTO(result))
}

// DeductibleExpenses classifies a year's expenses into prorated and fully
// deductible buckets.
func (h *Handler) DeductibleExpenses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	days, err := h.calcRentalDays(ctx, id, yearQuery(r))
	if err != nil {
		writeDomainError(w, "rental day calculation failed", err)
		return
	}
	expenses, err := h.Store.ListExpensesByProperty(ctx, id, days.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list expenses", err)
		return
	}

	result := modelo210.CalcDeductibleExpenses(sqlite.EngineExpenses(expenses), days.TotalRentedDays, days.Year)
	result.PropertyID = id
	writeJSON(w, http.StatusOK, toDeductibleExpensesDTO(result))
}

// RentalResult computes the full rental-year result and persists it: one
// declaration for the year and, when the year closed negative with
// qualifying expenses, a carry-forward negative income record.
//
// Everything is computed before anything is written.
func (h *Handler) RentalResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req YearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	ctx := r.Context()

	p, err := h.Store.GetProperty(ctx, id)
	if err != nil {
		writeStoreError(w, "failed to get property", err)
		return
	}
	days, err := h.calcRentalDays(ctx, id, req.Year)
	if err != nil {
		writeDomainError(w, "rental day calculation failed", err)
		return
	}
	expenses, err := h.Store.ListExpensesByProperty(ctx, id, days.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list expenses", err)
		return
	}

	engineExpenses := sqlite.EngineExpenses(expenses)
	deductible := modelo210.CalcDeductibleExpenses(engineExpenses, days.TotalRentedDays, days.Year)

	amortization := decimal.Zero
	if !p.AnnualAmortization.IsZero() {
		amort, err := modelo210.CalcAmortization(p.Property, days.TotalRentedDays, nil, days.Year)
		if err != nil {
			writeDomainError(w, "amortization calculation failed", err)
			return
		}
		amortization = amort.ProratedAmortization
	}

	result := modelo210.ResolveNegativeIncome(modelo210.NegativeIncomeInput{
		PropertyID:         id,
		Year:               days.Year,
		RentalIncome:       days.EstimatedIncome,
		DeductibleExpenses: deductible.Total,
		Amortization:       amortization,
		Expenses:           engineExpenses,
	})

	decl, err := h.Store.CreateDeclaration(ctx, sqlite.Declaration{
		PropertyID:         id,
		ClientID:           p.ClientID,
		Year:               days.Year,
		Kind:               modelo210.DeclarationRental,
		DeclaredDays:       days.TotalRentedDays,
		RentalIncome:       result.RentalIncome,
		DeductibleExpenses: result.DeductibleExpenses,
		Amortization:       result.Amortization,
		TaxableBase:        result.TaxableBase,
		TaxRatePct:         result.TaxRate.Mul(decimal.NewFromInt(100)),
		TaxDue:             result.TaxDue,
		OwnershipPct:       decimal.NewFromInt(100),
		Formula:            result.Note,
	})
	if err != nil {
		writeStoreError(w, "failed to persist declaration", err)
		return
	}

	dto := toRentalResultDTO(result)
	dto.DeclarationID = decl.ID

	if result.HasNegativeIncome {
		record, err := h.Store.CreateNegativeIncome(ctx, modelo210.NegativeIncomeRecord{
			ClientID:   p.ClientID,
			PropertyID: id,
			OriginYear: days.Year,
			Amount:     result.NegativeIncome,
			Concept:    result.Concept,
		})
		if err != nil {
			writeStoreError(w, "failed to persist negative income", err)
			return
		}
		dto.NegativeIncomeID = record.ID
	}

	writeJSON(w, http.StatusOK, dto)
}

// ImputationPreview computes the principal owner's imputed income without
// persisting anything. Query parameters: year, days, applied_pct.
func (h *Handler) ImputationPreview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	p, err := h.Store.GetProperty(ctx, id)
	if err != nil {
		writeStoreError(w, "failed to get property", err)
		return
	}
	coOwners, err := h.Store.ListCoOwners(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list co-owners", err)
		return
	}

	input, err := imputationInputFromQuery(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid imputation parameters", err)
		return
	}
	input.OwnershipPct = principalShare(coOwners)

	result, err := modelo210.CalcImputation(input)
	if err != nil {
		writeDomainError(w, "imputation calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toImputationDTO(id, p.ClientID, result))
}

// ImputationCalculate runs the imputation for every owner of the property
// and persists one declaration per owner. All results are computed before
// the first write.
func (h *Handler) ImputationCalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ImputationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	ctx := r.Context()

	p, err := h.Store.GetProperty(ctx, id)
	if err != nil {
		writeStoreError(w, "failed to get property", err)
		return
	}
	owners, err := h.ownerShares(ctx, p)
	if err != nil {
		writeStoreError(w, "failed to resolve owners", err)
		return
	}

	base := modelo210.ImputationInput{
		CadastralTotal: p.CadastralTotal.String(),
		PurchaseDate:   day(p.PurchaseDate),
		PropertyType:   p.Type,
		Year:           req.Year,
		Days:           req.Days,
	}
	if s := strings.TrimSpace(req.AppliedPct); s != "" {
		pct, err := decimal.NewFromString(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid applied_pct", err)
			return
		}
		base.AppliedPct = &pct
	}

	type ownerResult struct {
		clientID int64
		result   *modelo210.ImputationResult
	}
	results := make([]ownerResult, 0, len(owners))
	for _, owner := range owners {
		input := base
		input.OwnershipPct = owner.Percentage
		result, err := modelo210.CalcImputation(input)
		if err != nil {
			writeDomainError(w, "imputation calculation failed", err)
			return
		}
		results = append(results, ownerResult{clientID: owner.ClientID, result: result})
	}

	dtos := make([]ImputationDTO, 0, len(results))
	total := decimal.Zero
	for _, or := range results {
		res := or.result
		decl, err := h.Store.CreateDeclaration(ctx, sqlite.Declaration{
			PropertyID:    id,
			ClientID:      or.clientID,
			Year:          res.Year,
			Kind:          modelo210.DeclarationImputation,
			DeclaredDays:  res.Days,
			CadastralBase: res.CadastralTotal,
			AppliedPct:    res.ImputationPct,
			ImputedIncome: res.OwnerImputedIncome,
			TaxableBase:   res.TaxableBase,
			TaxRatePct:    res.TaxRatePct,
			TaxDue:        res.TaxDue,
			OwnershipPct:  res.OwnershipPct,
			Formula:       res.Formula,
		})
		if err != nil {
			writeStoreError(w, "failed to persist declaration", err)
			return
		}
		dto := toImputationDTO(id, or.clientID, res)
		dto.DeclarationID = decl.ID
		dtos = append(dtos, dto)
		total = total.Add(res.TaxDue)
	}

	writeJSON(w, http.StatusOK, ImputationCalculateDTO{
		PropertyID:   id,
		Year:         dtos[0].Year,
		Declarations: dtos,
		TotalTaxDue:  modelo210.Round2(total).StringFixed(2),
	})
}

// Compensate applies part of a pending negative income against a
// declaration's taxable base. Without an explicit amount the maximum
// compensable amount is applied.
func (h *Handler) Compensate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req CompensateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	ctx := r.Context()

	record, err := h.Store.GetNegativeIncome(ctx, id)
	if err != nil {
		writeStoreError(w, "failed to get negative income", err)
		return
	}
	if record.Status != modelo210.NegativePending {
		writeError(w, http.StatusBadRequest, "negative income is not pending",
			fmt.Errorf("status is %s", record.Status))
		return
	}

	decl, err := h.Store.GetDeclaration(ctx, req.DeclarationID)
	if err != nil {
		writeStoreError(w, "failed to get declaration", err)
		return
	}

	limit := modelo210.MaxCompensation(record.Pending(), decl.TaxableBase)
	amount := limit
	if s := strings.TrimSpace(req.Amount); s != "" {
		amount, err = decimal.NewFromString(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount", err)
			return
		}
	}
	if !amount.IsPositive() || amount.GreaterThan(limit) {
		writeError(w, http.StatusBadRequest, "amount exceeds the compensable limit",
			fmt.Errorf("requested %s, limit %s", amount.StringFixed(2), limit.StringFixed(2)))
		return
	}

	year := req.Year
	if year == 0 {
		year = decl.Year
	}

	comp, err := h.Store.ApplyCompensation(ctx, sqlite.Compensation{
		NegativeIncomeID: id,
		DeclarationID:    decl.ID,
		Year:             year,
		Amount:           amount,
	})
	if err != nil {
		writeStoreError(w, "failed to apply compensation", err)
		return
	}

	updated, err := h.Store.GetNegativeIncome(ctx, id)
	if err != nil {
		writeStoreError(w, "failed to reload negative income", err)
		return
	}

	writeJSON(w, http.StatusOK, CompensationDTO{
		ID:               comp.ID,
		NegativeIncomeID: comp.NegativeIncomeID,
		DeclarationID:    comp.DeclarationID,
		Year:             comp.Year,
		Amount:           comp.Amount.StringFixed(2),
		RemainingPending: updated.Pending().StringFixed(2),
		Status:           string(updated.Status),
		CreatedAt:        stamp(comp.CreatedAt),
	})
}

// ExpireNegativeIncome expires every pending negative income whose
// carry-forward window has passed. An optional body {"year": N} overrides
// the current year, for backfills.
func (h *Handler) ExpireNegativeIncome(w http.ResponseWriter, r *http.Request) {
	var req YearRequest
	if r.Body != nil {
		// Body is optional.
		json.NewDecoder(r.Body).Decode(&req)
	}
	year := req.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	expired, err := h.Store.ExpireNegativeIncome(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to expire negative income", err)
		return
	}
	writeJSON(w, http.StatusOK, ExpiryResultDTO{Year: year, Expired: expired})
}

// =============================================================================
// SHARED CALCULATION PLUMBING
// =============================================================================

// calcRentalDays loads a property's contracts and runs the rented-day
// calculation for the year.
func (h *Handler) calcRentalDays(ctx context.Context, propertyID int64, year int) (*modelo210.RentalDaysResult, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	if _, err := h.Store.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	contracts, err := h.Store.ListContractsByProperty(ctx, propertyID, true)
	if err != nil {
		return nil, err
	}
	result, err := modelo210.CalcRentalDays(sqlite.EngineContracts(contracts), year)
	if err != nil {
		return nil, err
	}
	result.PropertyID = propertyID
	return result, nil
}

// ownerShares resolves a property's full ownership split: the registered
// co-owners plus the principal owner holding the remainder. A principal
// with no remaining share is omitted.
func (h *Handler) ownerShares(ctx context.Context, p *sqlite.Property) ([]modelo210.CoOwnerShare, error) {
	coOwners, err := h.Store.ListCoOwners(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	shares := make([]modelo210.CoOwnerShare, 0, len(coOwners)+1)
	if principal := principalShare(coOwners); principal.IsPositive() {
		owner, err := h.Store.GetClient(ctx, p.ClientID)
		if err != nil {
			return nil, err
		}
		shares = append(shares, modelo210.CoOwnerShare{
			ClientID:   owner.ID,
			Name:       owner.Name + " " + owner.Surname,
			Percentage: principal,
		})
	}
	for _, o := range coOwners {
		shares = append(shares, o.Share())
	}
	return shares, nil
}

// principalShare is the percentage left to the principal owner after the
// registered co-owner shares.
func principalShare(coOwners []sqlite.CoOwner) decimal.Decimal {
	pct := decimal.NewFromInt(100)
	for _, o := range coOwners {
		pct = pct.Sub(o.Percentage)
	}
	return pct
}

func imputationInputFromQuery(r *http.Request, p *sqlite.Property) (modelo210.ImputationInput, error) {
	input := modelo210.ImputationInput{
		CadastralTotal: p.CadastralTotal.String(),
		PurchaseDate:   day(p.PurchaseDate),
		PropertyType:   p.Type,
	}

	q := r.URL.Query()
	if s := q.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return input, fmt.Errorf("invalid year: %q", s)
		}
		input.Year = year
	}
	if s := q.Get("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return input, fmt.Errorf("invalid days: %q", s)
		}
		input.Days = days
	}
	if s := q.Get("applied_pct"); s != "" {
		pct, err := decimal.NewFromString(s)
		if err != nil {
			return input, fmt.Errorf("invalid applied_pct: %q", s)
		}
		input.AppliedPct = &pct
	}
	return input, nil
}

func toRentalResultDTO(r *modelo210.NegativeIncomeResult) RentalResultDTO {
	dto := RentalResultDTO{
		PropertyID:         r.PropertyID,
		Year:               r.Year,
		RentalIncome:       r.RentalIncome.StringFixed(2),
		DeductibleExpenses: r.DeductibleExpenses.StringFixed(2),
		Amortization:       r.Amortization.StringFixed(2),
		Repairs:            r.Repairs.StringFixed(2),
		MortgageInterest:   r.MortgageInterest.StringFixed(2),
		OtherExpenses:      r.OtherExpenses.StringFixed(2),
		PreLimitResult:     r.PreLimitResult.StringFixed(2),
		HasNegativeIncome:  r.HasNegativeIncome,
		TaxableBase:        r.TaxableBase.StringFixed(2),
		TaxRatePct:         r.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(0),
		TaxDue:             r.TaxDue.StringFixed(2),
		Note:               r.Note,
	}
	if r.HasNegativeIncome {
		dto.NegativeIncome = r.NegativeIncome.StringFixed(2)
		dto.Concept = string(r.Concept)
		dto.ExpiryYear = r.ExpiryYear
	}
	return dto
}

// =============================================================================
// REQUEST VALIDATION AND CONVERSION
// =============================================================================

func validateClientRequest(req ClientRequest) error {
	switch {
	case strings.TrimSpace(req.NIE) == "":
		return fmt.Errorf("nie is required")
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(req.Surname) == "":
		return fmt.Errorf("surname is required")
	case strings.TrimSpace(req.Email) == "":
		return fmt.Errorf("email is required")
	}
	return nil
}

func clientFromRequest(req ClientRequest) sqlite.Client {
	return sqlite.Client{
		NIE:            strings.TrimSpace(req.NIE),
		Name:           strings.TrimSpace(req.Name),
		Surname:        strings.TrimSpace(req.Surname),
		Email:          strings.TrimSpace(req.Email),
		Phone:          req.Phone,
		ForeignCity:    req.ForeignCity,
		ForeignAddress: req.ForeignAddress,
		Notes:          req.Notes,
	}
}

func propertyFromRequest(req PropertyRequest) (sqlite.Property, error) {
	var p sqlite.Property
	if strings.TrimSpace(req.CadastralReference) == "" {
		return p, fmt.Errorf("cadastral_reference is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		return p, fmt.Errorf("address is required")
	}

	purchaseDate, err := parseDay("purchase_date", req.PurchaseDate)
	if err != nil {
		return p, err
	}
	purchasePrice, err := parseAmount("purchase_price", req.PurchasePrice)
	if err != nil {
		return p, err
	}
	cadastralTotal, err := parseAmount("cadastral_total", req.CadastralTotal)
	if err != nil {
		return p, err
	}
	cadastralLand, err := parseAmount("cadastral_land", req.CadastralLand)
	if err != nil {
		return p, err
	}
	cadastralConstruction, err := parseAmount("cadastral_construction", req.CadastralConstruction)
	if err != nil {
		return p, err
	}

	propertyType := modelo210.PropertyType(req.Type)
	if propertyType == "" {
		propertyType = modelo210.PropertyDwelling
	}
	kind := modelo210.DeclarationKind(req.DeclarationKind)
	if kind == "" {
		kind = modelo210.DeclarationImputation
	}

	p.Property = modelo210.Property{
		CadastralReference:    strings.TrimSpace(req.CadastralReference),
		Address:               strings.TrimSpace(req.Address),
		Type:                  propertyType,
		DeclarationKind:       kind,
		PurchaseDate:          purchaseDate,
		PurchasePrice:         purchasePrice,
		CadastralTotal:        cadastralTotal,
		CadastralLand:         cadastralLand,
		CadastralConstruction: cadastralConstruction,
	}
	p.Province = req.Province
	p.Municipality = req.Municipality
	p.Notes = req.Notes
	return p, nil
}

func contractFromRequest(req ContractRequest) (sqlite.Contract, error) {
	var c sqlite.Contract
	start, err := parseDay("start_date", req.StartDate)
	if err != nil {
		return c, err
	}
	end, err := parseDay("end_date", req.EndDate)
	if err != nil {
		return c, err
	}
	if start.IsZero() || end.IsZero() {
		return c, fmt.Errorf("start_date and end_date are required")
	}
	if end.Before(start) {
		return c, fmt.Errorf("end_date %s precedes start_date %s", req.EndDate, req.StartDate)
	}
	rent, err := parseAmount("monthly_rent", req.MonthlyRent)
	if err != nil {
		return c, err
	}
	if !rent.IsPositive() {
		return c, fmt.Errorf("monthly_rent must be positive")
	}
	if strings.TrimSpace(req.TenantName) == "" {
		return c, fmt.Errorf("tenant_name is required")
	}
	status := modelo210.ContractStatus(req.Status)
	if status == "" {
		status = modelo210.ContractActive
	}

	c.RentalContract = modelo210.RentalContract{
		Start:         start,
		End:           end,
		MonthlyRent:   rent,
		TenantName:    strings.TrimSpace(req.TenantName),
		TenantSurname: strings.TrimSpace(req.TenantSurname),
		Status:        status,
	}
	return c, nil
}

func documentFromRequest(req DocumentRequest) (sqlite.Document, error) {
	var d sqlite.Document
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return d, err
	}
	if !amount.IsPositive() {
		return d, fmt.Errorf("amount must be positive")
	}
	date, err := parseDay("date", req.Date)
	if err != nil {
		return d, err
	}
	d.AcquisitionDocument = modelo210.AcquisitionDocument{
		Type:   modelo210.DocumentType(req.Type),
		Amount: amount,
		Date:   date,
	}
	return d, nil
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

// pathID parses a numeric URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", fmt.Errorf("%q is not a valid id", raw))
		return 0, false
	}
	return id, true
}

// yearQuery parses the optional ?year= parameter, zero when absent.
func yearQuery(r *http.Request) int {
	s := r.URL.Query().Get("year")
	if s == "" {
		return 0
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return year
}

// parseAmount parses an optional decimal field, zero when blank.
func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %q", field, s)
	}
	return d, nil
}

// parseDay parses an optional "2006-01-02" date field, zero time when blank.
func parseDay(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q", field, s)
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store errors to HTTP statuses: not found is 404,
// duplicates and exceeded limits are 400, everything else 500.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case sqlite.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case sqlite.IsDuplicate(err),
		errors.Is(err, sqlite.ErrOwnershipExceeded),
		errors.Is(err, sqlite.ErrCompensationExceedsPending):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// writeDomainError maps engine and store errors raised during a calculation.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case modelo210.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeStoreError(w, message, err)
	}
}
