package mockapi

import (
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deividlukks/Fayol-sub007/pkg/httputil"
)

var accountTypes = map[string]bool{
	"CHECKING":    true,
	"SAVINGS":     true,
	"INVESTMENT":  true,
	"CASH":        true,
	"CREDIT_CARD": true,
}

var launchTypes = map[string]bool{
	"INCOME":   true,
	"EXPENSE":  true,
	"TRANSFER": true,
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Accounts

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, s.store.listAccounts(currentUser(r).ID))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	a, ok := s.store.account(currentUser(r).ID, chi.URLParam(r, "id"))
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "Conta não encontrada")
		return
	}
	httputil.WriteData(w, http.StatusOK, a)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		Balance  float64 `json:"balance"`
		Currency string  `json:"currency"`
		Color    string  `json:"color"`
		Icon     string  `json:"icon"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	fields := httputil.FieldErrors{}
	fields.Require("name", req.Name)
	if !accountTypes[req.Type] {
		fields.Add("type", "type must be one of CHECKING, SAVINGS, INVESTMENT, CASH, CREDIT_CARD")
	}
	if !fields.Empty() {
		httputil.WriteValidationError(w, "Dados inválidos", fields)
		return
	}
	if req.Currency == "" {
		req.Currency = "BRL"
	}

	now := time.Now().UTC()
	a := &Account{
		ID:        uuid.NewString(),
		UserID:    currentUser(r).ID,
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		Balance:   req.Balance,
		Currency:  req.Currency,
		Color:     req.Color,
		Icon:      req.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.mu.Lock()
	s.store.accounts[a.ID] = a
	s.store.mu.Unlock()

	httputil.WriteData(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string  `json:"name"`
		Type     *string  `json:"type"`
		Balance  *float64 `json:"balance"`
		Currency *string  `json:"currency"`
		Color    *string  `json:"color"`
		Icon     *string  `json:"icon"`
		Archived *bool    `json:"isArchived"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if req.Type != nil && !accountTypes[*req.Type] {
		httputil.WriteValidationError(w, "Dados inválidos", map[string][]string{
			"type": {"type must be one of CHECKING, SAVINGS, INVESTMENT, CASH, CREDIT_CARD"},
		})
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	a, ok := s.store.account(currentUser(r).ID, chi.URLParam(r, "id"))
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "Conta não encontrada")
		return
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.Balance != nil {
		a.Balance = *req.Balance
	}
	if req.Currency != nil {
		a.Currency = *req.Currency
	}
	if req.Color != nil {
		a.Color = *req.Color
	}
	if req.Icon != nil {
		a.Icon = *req.Icon
	}
	if req.Archived != nil {
		a.Archived = *req.Archived
	}
	a.UpdatedAt = time.Now().UTC()
	httputil.WriteData(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	userID := currentUser(r).ID
	a, ok := s.store.account(userID, chi.URLParam(r, "id"))
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "Conta não encontrada")
		return
	}
	for _, tx := range s.store.transactions {
		if tx.AccountID == a.ID || tx.DestinationAccountID == a.ID {
			httputil.WriteError(w, http.StatusConflict, "Conta possui transações vinculadas")
			return
		}
	}
	delete(s.store.accounts, a.ID)
	httputil.WriteMessage(w, "Conta removida")
}

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ := httputil.Query(r, "type")
	httputil.WriteData(w, http.StatusOK, s.store.listCategories(currentUser(r).ID, typ))
}

func (s *Server) handleSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, ok := s.store.subcategories(currentUser(r).ID, chi.URLParam(r, "id"))
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	httputil.WriteData(w, http.StatusOK, subs)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Icon     string `json:"icon"`
		Color    string `json:"color"`
		ParentID string `json:"parentId"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	fields := httputil.FieldErrors{}
	fields.Require("name", req.Name)
	if req.Type != "INCOME" && req.Type != "EXPENSE" {
		fields.Add("type", "type must be INCOME or EXPENSE")
	}
	if !fields.Empty() {
		httputil.WriteValidationError(w, "Dados inválidos", fields)
		return
	}

	userID := currentUser(r).ID
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if req.ParentID != "" {
		if _, ok := s.store.categories[req.ParentID]; !ok {
			httputil.WriteValidationError(w, "Dados inválidos", map[string][]string{
				"parentId": {"parent category does not exist"},
			})
			return
		}
	}
	for _, c := range s.store.categories {
		if (c.UserID == userID || c.IsSystem) && strings.EqualFold(c.Name, req.Name) && c.ParentID == req.ParentID {
			httputil.WriteError(w, http.StatusConflict, "Categoria já existe")
			return
		}
	}
	c := &Category{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Type:     req.Type,
		Icon:     req.Icon,
		Color:    req.Color,
		ParentID: req.ParentID,
	}
	s.store.categories[c.ID] = c
	httputil.WriteData(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	c, ok := s.store.categories[chi.URLParam(r, "id")]
	if !ok || (c.UserID != "" && c.UserID != currentUser(r).ID) {
		httputil.WriteError(w, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	if c.IsSystem {
		httputil.WriteError(w, http.StatusForbidden, "Categorias do sistema não podem ser removidas")
		return
	}
	delete(s.store.categories, c.ID)
	httputil.WriteMessage(w, "Categoria removida")
}

// Transactions

type transactionRequest struct {
	Description          *string    `json:"description"`
	Amount               *float64   `json:"amount"`
	Date                 *time.Time `json:"date"`
	Type                 *string    `json:"type"`
	AccountID            *string    `json:"accountId"`
	CategoryID           *string    `json:"categoryId"`
	DestinationAccountID *string    `json:"destinationAccountId"`
	IsPaid               *bool      `json:"isPaid"`
	Recurrence           *string    `json:"recurrence"`
	Notes                *string    `json:"notes"`
	Tags                 []string   `json:"tags"`
}

// apply copies set fields onto tx.
func (req transactionRequest) apply(tx *Transaction) {
	if req.Description != nil {
		tx.Description = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Date != nil {
		tx.Date = req.Date.UTC()
	}
	if req.Type != nil {
		tx.Type = *req.Type
	}
	if req.AccountID != nil {
		tx.AccountID = *req.AccountID
	}
	if req.CategoryID != nil {
		tx.CategoryID = *req.CategoryID
	}
	if req.DestinationAccountID != nil {
		tx.DestinationAccountID = *req.DestinationAccountID
	}
	if req.IsPaid != nil {
		tx.IsPaid = *req.IsPaid
	}
	if req.Recurrence != nil {
		tx.Recurrence = *req.Recurrence
	}
	if req.Notes != nil {
		tx.Notes = *req.Notes
	}
	if req.Tags != nil {
		tx.Tags = req.Tags
	}
}

// validateTransaction checks tx against the caller's accounts and
// categories. The store lock must be held.
func (s *store) validateTransaction(userID string, tx *Transaction) httputil.FieldErrors {
	fields := httputil.FieldErrors{}
	fields.Require("description", tx.Description)
	if tx.Amount <= 0 || math.IsNaN(tx.Amount) {
		fields.Add("amount", "amount must be positive")
	}
	if !launchTypes[tx.Type] {
		fields.Add("type", "type must be one of INCOME, EXPENSE, TRANSFER")
	}
	if _, ok := s.account(userID, tx.AccountID); !ok {
		fields.Add("accountId", "account does not exist")
	}
	if tx.Type == "TRANSFER" {
		if _, ok := s.account(userID, tx.DestinationAccountID); !ok {
			fields.Add("destinationAccountId", "destination account is required for transfers")
		} else if tx.DestinationAccountID == tx.AccountID {
			fields.Add("destinationAccountId", "destination must differ from source")
		}
	}
	if tx.CategoryID != "" {
		if c, ok := s.categories[tx.CategoryID]; !ok || (c.UserID != "" && c.UserID != userID) {
			fields.Add("categoryId", "category does not exist")
		}
	}
	return fields
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	userID := currentUser(r).ID
	tx := &Transaction{ID: uuid.NewString(), UserID: userID, Date: time.Now().UTC(), Recurrence: "NONE"}
	req.apply(tx)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if fields := s.store.validateTransaction(userID, tx); !fields.Empty() {
		httputil.WriteValidationError(w, "Dados inválidos", fields)
		return
	}
	s.store.transactions[tx.ID] = tx
	s.store.applyBalance(tx, 1)
	httputil.WriteData(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	tx, ok := s.store.transactions[chi.URLParam(r, "id")]
	if !ok || tx.UserID != currentUser(r).ID {
		httputil.WriteError(w, http.StatusNotFound, "Transação não encontrada")
		return
	}
	httputil.WriteData(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	userID := currentUser(r).ID
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	tx, ok := s.store.transactions[chi.URLParam(r, "id")]
	if !ok || tx.UserID != userID {
		httputil.WriteError(w, http.StatusNotFound, "Transação não encontrada")
		return
	}

	updated := *tx
	req.apply(&updated)
	if fields := s.store.validateTransaction(userID, &updated); !fields.Empty() {
		httputil.WriteValidationError(w, "Dados inválidos", fields)
		return
	}
	s.store.applyBalance(tx, -1)
	*tx = updated
	s.store.applyBalance(tx, 1)
	httputil.WriteData(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	tx, ok := s.store.transactions[chi.URLParam(r, "id")]
	if !ok || tx.UserID != currentUser(r).ID {
		httputil.WriteError(w, http.StatusNotFound, "Transação não encontrada")
		return
	}
	s.store.applyBalance(tx, -1)
	delete(s.store.transactions, tx.ID)
	httputil.WriteMessage(w, "Transação removida")
}

type transactionQuery struct {
	accountID, categoryID, typ, search string
	start, end                         time.Time
}

func parseTransactionQuery(r *http.Request) (transactionQuery, httputil.FieldErrors) {
	q := transactionQuery{
		accountID:  httputil.Query(r, "accountId"),
		categoryID: httputil.Query(r, "categoryId"),
		typ:        httputil.Query(r, "type"),
		search:     strings.ToLower(httputil.Query(r, "search")),
	}
	fields := httputil.FieldErrors{}
	for name, dst := range map[string]*time.Time{"startDate": &q.start, "endDate": &q.end} {
		v := httputil.Query(r, name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			fields.Add(name, name+" must be an RFC 3339 timestamp")
			continue
		}
		*dst = t
	}
	return q, fields
}

func (q transactionQuery) match(tx *Transaction) bool {
	switch {
	case q.accountID != "" && tx.AccountID != q.accountID && tx.DestinationAccountID != q.accountID:
		return false
	case q.categoryID != "" && tx.CategoryID != q.categoryID:
		return false
	case q.typ != "" && !strings.EqualFold(tx.Type, q.typ):
		return false
	case q.search != "" && !strings.Contains(strings.ToLower(tx.Description), q.search):
		return false
	case !q.start.IsZero() && tx.Date.Before(q.start):
		return false
	case !q.end.IsZero() && tx.Date.After(q.end):
		return false
	}
	return true
}

func (s *Server) filterTransactions(userID string, q transactionQuery) []Transaction {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	out := make([]Transaction, 0)
	for _, tx := range s.store.transactions {
		if tx.UserID == userID && q.match(tx) {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, fields := parseTransactionQuery(r)
	if !fields.Empty() {
		httputil.WriteValidationError(w, "Parâmetros inválidos", fields)
		return
	}

	page := httputil.QueryInt(r, "page", 1, 1, math.MaxInt32)
	limit := httputil.QueryInt(r, "limit", defaultPageSize, 1, maxPageSize)

	all := s.filterTransactions(currentUser(r).ID, q)
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	httputil.WriteData(w, http.StatusOK, map[string]any{
		"items": all[start:end],
		"meta": map[string]int{
			"page":       page,
			"limit":      limit,
			"total":      len(all),
			"totalPages": (len(all) + limit - 1) / limit,
		},
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, fields := parseTransactionQuery(r)
	if !fields.Empty() {
		httputil.WriteValidationError(w, "Parâmetros inválidos", fields)
		return
	}

	var income, expense float64
	txs := s.filterTransactions(currentUser(r).ID, q)
	for _, tx := range txs {
		switch tx.Type {
		case "INCOME":
			income += tx.Amount
		case "EXPENSE":
			expense += tx.Amount
		}
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"income":  income,
		"expense": expense,
		"balance": income - expense,
		"count":   len(txs),
	})
}
