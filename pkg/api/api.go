// Package api defines the request and response messages of the splitledger
// Connect services. Messages travel as JSON; amounts are decimal strings.
package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	// User is nil when the caller is not signed in.
	User *User `json:"user"`
}

// Member is a group member with their display name resolved.
type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type Group struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	CreatedBy  string   `json:"createdBy"`
	InviteCode string   `json:"inviteCode"`
	Members    []Member `json:"members"`
	CreatedAt  int64    `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"inviteCode"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupSummaryResponse struct {
	Summary *GroupSummary `json:"summary"`
}

// GroupSummary is the settlement view of a group. Balances are positive for
// members who are owed money and negative for members who owe.
type GroupSummary struct {
	GroupID         string          `json:"groupId"`
	Balances        []Balance       `json:"balances"`
	Debts           []Debt          `json:"debts"`
	Spending        []Balance       `json:"spending"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	ExpenseCount    int             `json:"expenseCount"`
	SettlementCount int             `json:"settlementCount"`
}

type Balance struct {
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	Amount      decimal.Decimal `json:"amount"`
}

// Debt is a suggested payment from one member to another.
type Debt struct {
	FromUserID string          `json:"fromUserId"`
	FromName   string          `json:"fromName"`
	ToUserID   string          `json:"toUserId"`
	ToName     string          `json:"toName"`
	Amount     decimal.Decimal `json:"amount"`
}

type Contribution struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type Split struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type Expense struct {
	ID            string          `json:"id"`
	GroupID       string          `json:"groupId"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaidBy        string          `json:"paidBy,omitempty"`
	Contributions []Contribution  `json:"contributions,omitempty"`
	SplitType     string          `json:"splitType"`
	Splits        []Split         `json:"splits"`
	SpentAt       int64           `json:"spentAt,omitempty"`
	CreatedAt     int64           `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// CreateExpenseRequest records an expense. Funding is either Contributions or
// a single PaidBy (defaulting to the caller). SplitType "custom" takes Splits;
// otherwise the amount is shared equally across SplitBetween, or across every
// member when SplitBetween is empty.
type CreateExpenseRequest struct {
	GroupID       string          `json:"groupId"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaidBy        string          `json:"paidBy,omitempty"`
	Contributions []Contribution  `json:"contributions,omitempty"`
	SplitType     string          `json:"splitType,omitempty"`
	SplitBetween  []string        `json:"splitBetween,omitempty"`
	Splits        []Split         `json:"splits,omitempty"`
	SpentAt       int64           `json:"spentAt,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	GroupID   string `json:"groupId"`
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type Settlement struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"groupId"`
	FromUserID string          `json:"fromUserId"`
	ToUserID   string          `json:"toUserId"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  int64           `json:"createdAt"`
	CreatedBy  string          `json:"createdBy"`
}

type CreateSettlementRequest struct {
	GroupID    string          `json:"groupId"`
	FromUserID string          `json:"fromUserId"`
	ToUserID   string          `json:"toUserId"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	GroupID      string `json:"groupId"`
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}
