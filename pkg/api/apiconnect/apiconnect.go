// Package apiconnect wires the api messages to Connect: procedure names,
// service handlers and typed clients. Every handler and client speaks the
// JSON codec defined here, so plain Go structs can be used as messages.
package apiconnect

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

const (
	AuthServiceName       = "splitledger.v1.AuthService"
	GroupServiceName      = "splitledger.v1.GroupService"
	ExpenseServiceName    = "splitledger.v1.ExpenseService"
	SettlementServiceName = "splitledger.v1.SettlementService"
)

// Procedure names.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	GroupServiceCreateGroupProcedure     = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceListGroupsProcedure      = "/" + GroupServiceName + "/ListGroups"
	GroupServiceGetGroupProcedure        = "/" + GroupServiceName + "/GetGroup"
	GroupServiceJoinGroupProcedure       = "/" + GroupServiceName + "/JoinGroup"
	GroupServiceGetGroupSummaryProcedure = "/" + GroupServiceName + "/GetGroupSummary"

	ExpenseServiceCreateExpenseProcedure = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceListExpensesProcedure  = "/" + ExpenseServiceName + "/ListExpenses"
	ExpenseServiceDeleteExpenseProcedure = "/" + ExpenseServiceName + "/DeleteExpense"

	SettlementServiceCreateSettlementProcedure = "/" + SettlementServiceName + "/CreateSettlement"
	SettlementServiceListSettlementsProcedure  = "/" + SettlementServiceName + "/ListSettlements"
	SettlementServiceDeleteSettlementProcedure = "/" + SettlementServiceName + "/DeleteSettlement"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

// SessionProcedures accept anonymous callers and answer them with an empty
// result instead of an error.
var SessionProcedures = []string{
	AuthServiceGetCurrentUserProcedure,
}

// Codec marshals messages with encoding/json. It is registered under the
// "json" name, replacing Connect's protojson codec.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	out := make([]connect.HandlerOption, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, connect.WithCodec(Codec{}))
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	out := make([]connect.ClientOption, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, connect.WithCodec(Codec{}))
}

func unary[Req, Res any](
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) *connect.Handler {
	return connect.NewUnaryHandler(procedure, fn, opts...)
}

// route dispatches on the full procedure path.
func route(handlers map[string]*connect.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
