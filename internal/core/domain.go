package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	Daily     Period = "daily"
	Weekly    Period = "weekly"
	Monthly   Period = "monthly"
	Quarterly Period = "quarterly"
	Yearly    Period = "yearly"
)

// MaxBudgetAmount is the upper bound accepted for a budget cap.
const MaxBudgetAmount = 1_000_000

type (
	TransactionKind string

	Period string

	// Date is a calendar date with day granularity. The zero value means
	// "not set". It marshals to and from ISO dates (2006-01-02).
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64           `json:"id"`
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		Date        Date            `json:"date"`
		Kind        TransactionKind `json:"kind"`
		Category    string          `json:"category"`
	}

	Alert struct {
		Type      string    `json:"type"`
		Message   string    `json:"message"`
		Severity  string    `json:"severity"`
		Timestamp time.Time `json:"timestamp"`
	}

	Budget struct {
		ID          int64    `json:"id"`
		Name        string   `json:"name"`
		Amount      float64  `json:"amount"`
		Period      Period   `json:"period"`
		Categories  []string `json:"categories"`
		Description string   `json:"description,omitempty"`
		StartDate   Date     `json:"startDate"`
		EndDate     Date     `json:"endDate"`

		// DailyBudget is fixed at creation time from the full period length;
		// the remaining derived fields are recomputed on every refresh.
		DailyBudget float64 `json:"dailyBudget"`

		ActualSpent    float64      `json:"actualSpent"`
		Remaining      float64      `json:"remaining"`
		DaysElapsed    int          `json:"daysElapsed"`
		DaysRemaining  int          `json:"daysRemaining"`
		DailyAverage   float64      `json:"dailyAverage"`
		ProjectedSpend float64      `json:"projectedSpend"`
		Variance       float64      `json:"variance"`
		Status         BudgetStatus `json:"status"`
		Alerts         []Alert      `json:"alerts,omitempty"`

		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
		Version   int64     `json:"version"`
	}

	BudgetStatus string

	GoalStatus string

	Milestone struct {
		Percentage int        `json:"percentage"`
		Amount     float64    `json:"amount"`
		Achieved   bool       `json:"achieved"`
		AchievedAt *time.Time `json:"achievedAt,omitempty"`
	}

	ContributionOrigin string

	Contribution struct {
		ID            int64              `json:"id"`
		Amount        float64            `json:"amount"`
		Description   string             `json:"description,omitempty"`
		Date          Date               `json:"date"`
		Origin        ContributionOrigin `json:"origin"`
		TransactionID int64              `json:"transactionId,omitempty"`
	}

	Goal struct {
		ID            int64   `json:"id"`
		Title         string  `json:"title"`
		Description   string  `json:"description,omitempty"`
		TargetAmount  float64 `json:"targetAmount"`
		CurrentAmount float64 `json:"currentAmount"`
		Category      string  `json:"category"`
		StartDate     Date    `json:"startDate"`
		Deadline      Date    `json:"deadline"`

		Progress      float64        `json:"progress"`
		DaysElapsed   int            `json:"daysElapsed"`
		DaysRemaining int            `json:"daysRemaining"`
		DailyRequired float64        `json:"dailyRequired"`
		Status        GoalStatus     `json:"status"`
		Milestones    []Milestone    `json:"milestones"`
		Contributions []Contribution `json:"contributions,omitempty"`

		// LastContribution is the calendar date of the most recent manual
		// contribution; zero when none has been made yet.
		LastContribution Date `json:"lastContribution,omitempty"`
		Streak           int  `json:"streak"`

		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
		Version   int64     `json:"version"`
	}
)

const (
	BudgetExceeded  BudgetStatus = "exceeded"
	BudgetCritical  BudgetStatus = "critical"
	BudgetWarning   BudgetStatus = "warning"
	BudgetModerate  BudgetStatus = "moderate"
	BudgetGood      BudgetStatus = "good"
	BudgetExcellent BudgetStatus = "excellent"
	BudgetExpired   BudgetStatus = "expired"
)

const (
	GoalAchieved       GoalStatus = "achieved"
	GoalExpired        GoalStatus = "expired"
	GoalBehind         GoalStatus = "behind"
	GoalAhead          GoalStatus = "ahead"
	GoalUrgent         GoalStatus = "urgent"
	GoalNearCompletion GoalStatus = "near_completion"
	GoalGoodProgress   GoalStatus = "good_progress"
	GoalStarted        GoalStatus = "started"
	GoalNew            GoalStatus = "new"
)

const (
	ManualContribution ContributionOrigin = "manual"
	LinkedTransaction  ContributionOrigin = "transaction"
)

// ErrValidation is the base error for malformed create/update input.
// The specific validation sentinels wrap it so callers can match the whole
// class with errors.Is(err, ErrValidation).
var ErrValidation = errors.New("invalid input")

var (
	ErrNameTooShort     = fmt.Errorf("%w: name must be at least 2 characters", ErrValidation)
	ErrTitleTooShort    = fmt.Errorf("%w: title must be at least 2 characters", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	ErrAmountTooLarge   = fmt.Errorf("%w: amount exceeds the allowed maximum", ErrValidation)
	ErrNoCategories     = fmt.Errorf("%w: at least one category is required", ErrValidation)
	ErrInvalidPeriod    = fmt.Errorf("%w: unknown budget period", ErrValidation)
	ErrInvalidKind      = fmt.Errorf("%w: transaction kind must be income or expense", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: description is required", ErrValidation)
	ErrMissingDate      = fmt.Errorf("%w: date is required", ErrValidation)
	ErrEmptyCategory    = fmt.Errorf("%w: category is required", ErrValidation)
	ErrPastDeadline     = fmt.Errorf("%w: deadline must be in the future", ErrValidation)
	ErrInitialTooLarge  = fmt.Errorf("%w: initial amount cannot exceed the target", ErrValidation)
)

// ErrNotFound marks lookups for entities that are not in a collection.
var ErrNotFound = errors.New("not found")

func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	default:
		return false
	}
}

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO date string (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", ErrValidation)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Tolerate full timestamps in persisted blobs; only the date part counts.
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = Date{Time: t}
	return nil
}

// SameDay compares two dates at calendar-day granularity.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

// TransactionInput carries the caller-supplied fields of a transaction.
type TransactionInput struct {
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Date        Date            `json:"date"`
	Kind        TransactionKind `json:"kind"`
	Category    string          `json:"category"`
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return ErrInvalidAmount
	}
	if in.Date.IsZero() {
		return ErrMissingDate
	}
	if !in.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// BudgetInput carries the caller-supplied fields of a budget.
type BudgetInput struct {
	Name        string   `json:"name"`
	Amount      float64  `json:"amount"`
	Period      Period   `json:"period,omitempty"`
	Categories  []string `json:"categories"`
	StartDate   Date     `json:"startDate,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (in BudgetInput) Validate() error {
	if len(strings.TrimSpace(in.Name)) < 2 {
		return ErrNameTooShort
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return ErrInvalidAmount
	}
	if in.Amount > MaxBudgetAmount {
		return ErrAmountTooLarge
	}
	categories := 0
	for _, c := range in.Categories {
		if strings.TrimSpace(c) != "" {
			categories++
		}
	}
	if categories == 0 {
		return ErrNoCategories
	}
	if in.Period != "" && !in.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

// GoalInput carries the caller-supplied fields of a goal.
type GoalInput struct {
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	TargetAmount  float64 `json:"targetAmount"`
	InitialAmount float64 `json:"initialAmount,omitempty"`
	Category      string  `json:"category,omitempty"`
	StartDate     Date    `json:"startDate,omitempty"`
	Deadline      Date    `json:"deadline,omitempty"`
}

// Validate checks the goal input against the given instant. The deadline,
// when set, must fall on a strictly future calendar date.
func (in GoalInput) Validate(now time.Time) error {
	if len(strings.TrimSpace(in.Title)) < 2 {
		return ErrTitleTooShort
	}
	if in.TargetAmount <= 0 || math.IsNaN(in.TargetAmount) || math.IsInf(in.TargetAmount, 0) {
		return ErrInvalidAmount
	}
	if !in.Deadline.IsZero() && !in.Deadline.After(now) {
		return ErrPastDeadline
	}
	if in.InitialAmount < 0 {
		return ErrInvalidAmount
	}
	if in.InitialAmount > in.TargetAmount {
		return ErrInitialTooLarge
	}
	return nil
}

// NewMilestones builds the four fixed checkpoints at 25/50/75/100% of target.
func NewMilestones(targetAmount float64) []Milestone {
	percentages := []int{25, 50, 75, 100}
	milestones := make([]Milestone, 0, len(percentages))
	for _, p := range percentages {
		milestones = append(milestones, Milestone{
			Percentage: p,
			Amount:     Round2(targetAmount * float64(p) / 100),
		})
	}
	return milestones
}

// Round2 rounds to two decimal places for display-oriented aggregates.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
