package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// User is a registered user.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	password string
}

// Account is a financial account.
type Account struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Archived  bool      `json:"isArchived,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category classifies transactions.
type Category struct {
	ID       string `json:"id"`
	UserID   string `json:"userId,omitempty"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	IsSystem bool   `json:"isSystem,omitempty"`
}

// Transaction is an income, expense or transfer entry.
type Transaction struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	Description          string    `json:"description"`
	Amount               float64   `json:"amount"`
	Date                 time.Time `json:"date"`
	Type                 string    `json:"type"`
	AccountID            string    `json:"accountId"`
	CategoryID           string    `json:"categoryId,omitempty"`
	DestinationAccountID string    `json:"destinationAccountId,omitempty"`
	IsPaid               bool      `json:"isPaid"`
	Recurrence           string    `json:"recurrence,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	Tags                 []string  `json:"tags,omitempty"`
}

type session struct {
	userID  string
	refresh string
}

// store is the in-memory state behind the fake API.
type store struct {
	mu sync.RWMutex

	users        map[string]*User // by ID
	emails       map[string]string
	tokens       map[string]session // access token -> session
	refresh      map[string]string  // refresh token -> user ID
	resetTokens  map[string]string  // reset token -> user ID
	accounts     map[string]*Account
	categories   map[string]*Category
	transactions map[string]*Transaction
}

func newStore() *store {
	return &store{
		users:        make(map[string]*User),
		emails:       make(map[string]string),
		tokens:       make(map[string]session),
		refresh:      make(map[string]string),
		resetTokens:  make(map[string]string),
		accounts:     make(map[string]*Account),
		categories:   make(map[string]*Category),
		transactions: make(map[string]*Transaction),
	}
}

var systemCategories = []struct {
	name, typ, icon string
	children        []string
}{
	{"Salário", "INCOME", "briefcase", nil},
	{"Investimentos", "INCOME", "trending-up", nil},
	{"Alimentação", "EXPENSE", "utensils", []string{"Mercado", "Restaurantes"}},
	{"Transporte", "EXPENSE", "car", []string{"Combustível", "Transporte público"}},
	{"Moradia", "EXPENSE", "home", nil},
	{"Lazer", "EXPENSE", "smile", nil},
}

func (s *store) seedCategories() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range systemCategories {
		parent := &Category{ID: uuid.NewString(), Name: sc.name, Type: sc.typ, Icon: sc.icon, IsSystem: true}
		s.categories[parent.ID] = parent
		for _, child := range sc.children {
			c := &Category{ID: uuid.NewString(), Name: child, Type: sc.typ, ParentID: parent.ID, IsSystem: true}
			s.categories[c.ID] = c
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *store) createUser(name, email, phone, password string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(email)
	if _, exists := s.emails[key]; exists {
		return nil, false
	}
	u := &User{ID: uuid.NewString(), Name: name, Email: key, Phone: phone, password: password}
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return u, true
}

func (s *store) userByEmail(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

// login returns a fresh access and refresh token pair.
func (s *store) login(u *User) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	access, refresh = uuid.NewString(), uuid.NewString()
	s.tokens[access] = session{userID: u.ID, refresh: refresh}
	s.refresh[refresh] = u.ID
	return access, refresh
}

func (s *store) userForToken(token string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	u, ok := s.users[sess.userID]
	return u, ok
}

func (s *store) logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.tokens[token]; ok {
		delete(s.refresh, sess.refresh)
		delete(s.tokens, token)
	}
}

// rotate issues a new access token for a refresh token.
func (s *store) rotate(refresh string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.refresh[refresh]
	if !ok {
		return "", false
	}
	access := uuid.NewString()
	s.tokens[access] = session{userID: userID, refresh: refresh}
	return access, true
}

func (s *store) revokeAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *store) issueResetToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := uuid.NewString()
	s.resetTokens[tok] = userID
	return tok
}

func (s *store) resetTokenFor(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return "", false
	}
	for tok, uid := range s.resetTokens {
		if uid == id {
			return tok, true
		}
	}
	return "", false
}

func (s *store) validResetToken(tok string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.resetTokens[tok]
	return ok
}

func (s *store) resetPassword(tok, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.resetTokens[tok]
	if !ok {
		return false
	}
	s.users[uid].password = password
	delete(s.resetTokens, tok)
	return true
}

func (s *store) listAccounts(userID string) []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *store) account(userID, id string) (*Account, bool) {
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return nil, false
	}
	return a, true
}

func (s *store) listCategories(userID, typ string) []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, 0)
	for _, c := range s.categories {
		if c.UserID != "" && c.UserID != userID {
			continue
		}
		if c.ParentID != "" {
			continue
		}
		if typ != "" && !strings.EqualFold(c.Type, typ) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *store) subcategories(userID, parentID string) ([]Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parent, ok := s.categories[parentID]
	if !ok || (parent.UserID != "" && parent.UserID != userID) {
		return nil, false
	}
	out := make([]Category, 0)
	for _, c := range s.categories {
		if c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, true
}

// applyBalance moves tx's amount into or out of its accounts. sign is +1 to
// apply and -1 to revert.
func (s *store) applyBalance(tx *Transaction, sign float64) {
	if !tx.IsPaid {
		return
	}
	src, ok := s.accounts[tx.AccountID]
	if !ok {
		return
	}
	switch tx.Type {
	case "INCOME":
		src.Balance += sign * tx.Amount
	case "EXPENSE":
		src.Balance -= sign * tx.Amount
	case "TRANSFER":
		src.Balance -= sign * tx.Amount
		if dst, ok := s.accounts[tx.DestinationAccountID]; ok {
			dst.Balance += sign * tx.Amount
		}
	}
}
