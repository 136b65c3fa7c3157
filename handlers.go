package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var store Store

// apiError maps the core error taxonomy onto HTTP status codes.
func apiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errInactive), errors.Is(err, errAlreadyGenerated):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	if err := db.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ledger-service",
	})
}

// getBalance returns the caller's current balance with its breakdown, with
// optional Redis caching
func getBalance(c *gin.Context) {
	userID, _ := callerID(c)
	ctx := c.Request.Context()

	var cached BalanceBreakdown
	if cacheGet(ctx, balanceCacheKey(userID), &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	breakdown, err := currentBalance(ctx, store, userID)
	if err != nil {
		apiError(c, err)
		return
	}

	cacheSet(ctx, balanceCacheKey(userID), breakdown)
	c.JSON(http.StatusOK, breakdown)
}

type initialBalanceRequest struct {
	Amount float64 `json:"amount"`
}

// setInitialBalance upserts the caller's starting amount
func setInitialBalance(c *gin.Context) {
	userID, _ := callerID(c)

	var req initialBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := store.SetInitialBalance(c.Request.Context(), userID, req.Amount); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"amount": req.Amount})
}

// getBalanceHistory returns the day-by-day series plus the forecast
func getBalanceHistory(c *gin.Context) {
	userID, _ := callerID(c)
	ctx := c.Request.Context()

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		days = parsed
	}

	var cached BalanceHistory
	if cacheGet(ctx, historyCacheKey(userID, days), &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	history, err := balanceHistory(ctx, store, userID, days, time.Now())
	if err != nil {
		apiError(c, err)
		return
	}

	cacheSet(ctx, historyCacheKey(userID, days), history)
	c.JSON(http.StatusOK, history)
}

// getBudgets reports spend against each budget of the requested period
// (default: the current month), with optional Redis caching
func getBudgets(c *gin.Context) {
	userID, _ := callerID(c)
	ctx := c.Request.Context()

	period := c.Query("period")
	if period == "" {
		period = currentPeriodKey(time.Now())
	}

	var cached []BudgetStatus
	if cacheGet(ctx, budgetsCacheKey(userID, period), &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	statuses, err := budgetStatus(ctx, store, userID, period)
	if err != nil {
		apiError(c, err)
		return
	}

	cacheSet(ctx, budgetsCacheKey(userID, period), statuses)
	c.JSON(http.StatusOK, statuses)
}

type budgetRequest struct {
	CategoryID   int     `json:"category_id"`
	MonthlyLimit float64 `json:"monthly_limit"`
	PeriodKey    string  `json:"period_key"`
}

// setBudget creates or replaces the monthly limit for one category
func setBudget(c *gin.Context) {
	userID, _ := callerID(c)

	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MonthlyLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monthly_limit must be positive"})
		return
	}
	if req.PeriodKey == "" {
		req.PeriodKey = currentPeriodKey(time.Now())
	}
	if _, err := time.Parse("2006-01", req.PeriodKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_key must be YYYY-MM"})
		return
	}

	b := &Budget{
		ID:           uuid.New().String(),
		UserID:       userID,
		CategoryID:   req.CategoryID,
		MonthlyLimit: req.MonthlyLimit,
		PeriodKey:    req.PeriodKey,
	}
	if err := store.UpsertBudget(c.Request.Context(), b); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, b)
}

// getTransactions retrieves the caller's transactions, newest first, with an
// optional date range
func getTransactions(c *gin.Context) {
	userID, _ := callerID(c)

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		to = parsed
	}

	transactions, err := store.TransactionsInRange(c.Request.Context(), userID, from, to, true)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

type transactionRequest struct {
	CategoryID *int            `json:"category_id"`
	Name       string          `json:"name"`
	Amount     float64         `json:"amount"`
	Kind       TransactionKind `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (r *transactionRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Amount < 0 {
		return errors.New("amount must be non-negative")
	}
	if !validKind(r.Kind) {
		return errors.New("kind must be income or expense")
	}
	return nil
}

// addTransaction creates a new transaction
func addTransaction(c *gin.Context) {
	userID, _ := callerID(c)

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.OccurredAt.IsZero() {
		req.OccurredAt = time.Now()
	}

	t := &Transaction{
		ID:         uuid.New().String(),
		UserID:     userID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Amount:     req.Amount,
		Kind:       req.Kind,
		OccurredAt: req.OccurredAt,
	}
	if err := store.CreateTransaction(c.Request.Context(), t); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, t)
}

// updateTransaction replaces the mutable fields of one transaction
func updateTransaction(c *gin.Context) {
	userID, _ := callerID(c)
	id := c.Param("id")

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := store.GetTransaction(c.Request.Context(), userID, id)
	if err != nil {
		apiError(c, err)
		return
	}
	t.CategoryID = req.CategoryID
	t.Name = req.Name
	t.Amount = req.Amount
	t.Kind = req.Kind
	if !req.OccurredAt.IsZero() {
		t.OccurredAt = req.OccurredAt
	}

	if err := store.UpdateTransaction(c.Request.Context(), t); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, t)
}

// deleteTransaction removes a transaction by ID
func deleteTransaction(c *gin.Context) {
	userID, _ := callerID(c)

	if err := store.DeleteTransaction(c.Request.Context(), userID, c.Param("id")); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// getRules lists the caller's recurring rules
func getRules(c *gin.Context) {
	userID, _ := callerID(c)

	rules, err := store.RulesByUser(c.Request.Context(), userID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

type ruleRequest struct {
	CategoryID *int            `json:"category_id"`
	Name       string          `json:"name"`
	Amount     float64         `json:"amount"`
	Kind       TransactionKind `json:"kind"`
	Frequency  Frequency       `json:"frequency"`
	DayOfWeek  *int            `json:"day_of_week"`
	DayOfMonth *int            `json:"day_of_month"`
	StartDate  time.Time       `json:"start_date"`
	IsActive   *bool           `json:"is_active"`
}

// addRule creates a recurring rule
func addRule(c *gin.Context) {
	userID, _ := callerID(c)

	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := &RecurringRule{
		ID:         uuid.New().String(),
		UserID:     userID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Amount:     req.Amount,
		Kind:       req.Kind,
		Frequency:  req.Frequency,
		DayOfWeek:  req.DayOfWeek,
		DayOfMonth: req.DayOfMonth,
		StartDate:  req.StartDate,
		IsActive:   true,
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	if r.StartDate.IsZero() {
		r.StartDate = time.Now()
	}
	if err := validateRule(r); err != nil {
		apiError(c, err)
		return
	}

	if err := store.CreateRule(c.Request.Context(), r); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// updateRule replaces a rule's definition; the generation watermark is never
// touched here
func updateRule(c *gin.Context) {
	userID, _ := callerID(c)
	id := c.Param("id")

	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := store.GetRule(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}
	if r.UserID != userID {
		apiError(c, errNotFound)
		return
	}

	r.CategoryID = req.CategoryID
	r.Name = req.Name
	r.Amount = req.Amount
	r.Kind = req.Kind
	r.Frequency = req.Frequency
	r.DayOfWeek = req.DayOfWeek
	r.DayOfMonth = req.DayOfMonth
	if !req.StartDate.IsZero() {
		r.StartDate = req.StartDate
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	if err := validateRule(r); err != nil {
		apiError(c, err)
		return
	}

	if err := store.UpdateRule(c.Request.Context(), r); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// deleteRule removes a recurring rule by ID
func deleteRule(c *gin.Context) {
	userID, _ := callerID(c)

	if err := store.DeleteRule(c.Request.Context(), userID, c.Param("id")); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}

// generateRule is the manual trigger for one rule
func generateRule(c *gin.Context) {
	userID, _ := callerID(c)

	txID, err := generateNow(c.Request.Context(), store, userID, c.Param("id"), time.Now())
	if err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, gin.H{"transaction_id": txID})
}

// getDebts lists the caller's debts
func getDebts(c *gin.Context) {
	userID, _ := callerID(c)

	debts, err := store.DebtsByUser(c.Request.Context(), userID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, debts)
}

// addDebt records money lent or borrowed
func addDebt(c *gin.Context) {
	userID, _ := callerID(c)

	var d Debt
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.ID = uuid.New().String()
	d.UserID = userID
	d.IsPaid = false
	if err := validateDebt(&d); err != nil {
		apiError(c, err)
		return
	}

	if err := store.CreateDebt(c.Request.Context(), &d); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, d)
}

// payDebt flips the one-way paid flag
func payDebt(c *gin.Context) {
	userID, _ := callerID(c)

	d, err := settleDebt(c.Request.Context(), store, userID, c.Param("id"))
	if err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, d)
}

// deleteDebt removes a debt by ID
func deleteDebt(c *gin.Context) {
	userID, _ := callerID(c)

	if err := store.DeleteDebt(c.Request.Context(), userID, c.Param("id")); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"message": "Debt deleted"})
}

// getGoals lists the caller's savings goals
func getGoals(c *gin.Context) {
	userID, _ := callerID(c)

	goals, err := store.GoalsByUser(c.Request.Context(), userID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// addGoal creates a savings goal
func addGoal(c *gin.Context) {
	userID, _ := callerID(c)

	var g Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g.ID = uuid.New().String()
	g.UserID = userID
	if err := validateGoal(&g); err != nil {
		apiError(c, err)
		return
	}

	if err := store.CreateGoal(c.Request.Context(), &g); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, g)
}

// deleteGoal removes a goal by ID
func deleteGoal(c *gin.Context) {
	userID, _ := callerID(c)

	if err := store.DeleteGoal(c.Request.Context(), userID, c.Param("id")); err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

type savingsRequest struct {
	Amount float64 `json:"amount"`
}

// addGoalSavings moves money into a goal
func addGoalSavings(c *gin.Context) {
	userID, _ := callerID(c)

	var req savingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := addSavings(c.Request.Context(), store, userID, c.Param("id"), req.Amount)
	if err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, g)
}

// withdrawGoalSavings takes money back out of a goal
func withdrawGoalSavings(c *gin.Context) {
	userID, _ := callerID(c)

	var req savingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := withdrawSavings(c.Request.Context(), store, userID, c.Param("id"), req.Amount)
	if err != nil {
		apiError(c, err)
		return
	}

	invalidateUserCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, g)
}

// getCategories retrieves all categories
func getCategories(c *gin.Context) {
	categories, err := store.Categories(c.Request.Context())
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
