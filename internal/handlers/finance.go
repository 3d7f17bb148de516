package handlers

import (
	"net/http"

	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

type balanceRequest struct {
	Balance float64 `json:"balance"`
	Reason  string  `json:"reason"`
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Accounts())
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var a models.Account
	if !decode(w, r, &a) {
		return
	}
	a, err := h.Store.AddAccount(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var a models.Account
	if !decode(w, r, &a) {
		return
	}
	a.ID = r.PathValue("id")
	if err := h.Store.UpdateAccount(r.Context(), a); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// AdjustAccount: POST /api/accounts/{id}/adjust – books the difference to
// the wanted balance.
func (h *Handler) AdjustAccount(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Store.AdjustAccountBalance(r.Context(), r.PathValue("id"), req.Balance, req.Reason); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Store.Accounts())
}

func (h *Handler) AdjustCustomer(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if _, err := h.Store.Customer(id); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.AdjustCustomerBalance(r.Context(), id, req.Balance, req.Reason); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.Store.Customer(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// RecalculateAccounts: POST /api/accounts/recalculate
func (h *Handler) RecalculateAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.RecalculateAccountBalances(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

// ResetAccounts: POST /api/accounts/reset – zeroes balances, keeps the ledger.
func (h *Handler) ResetAccounts(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ResetAllAccounts(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Store.Accounts())
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := h.Store.Transactions()
	if acc := r.URL.Query().Get("account"); acc != "" {
		filtered := txs[:0]
		for _, tx := range txs {
			if tx.References(acc) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}
	httpx.JSON(w, http.StatusOK, txs)
}

func validateTransaction(tx models.Transaction) validation.Violations {
	v := validation.Violations{}
	validation.Required("type", string(tx.Type), v)
	validation.OneOf("type", string(tx.Type), []string{string(models.TransactionIncome), string(models.TransactionExpense)}, v)
	validation.PositiveFloat("amount", tx.Amount, v)
	if tx.Account == "" && tx.CustomerName == "" {
		v["account"] = "required"
	}
	return v
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if !decode(w, r, &tx) {
		return
	}
	if v := validateTransaction(tx); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	tx, err := h.Store.AddTransaction(r.Context(), tx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

// UpdateTransaction: PUT /api/transactions/{id} – reverses the old effect
// then applies the new one.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Store.Transaction(id); err != nil {
		h.fail(w, r, err)
		return
	}
	var tx models.Transaction
	if !decode(w, r, &tx) {
		return
	}
	tx.ID = id
	if v := validateTransaction(tx); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Store.UpdateTransaction(r.Context(), tx); err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := h.Store.Transaction(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}
