package accounting

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ErrEmptyTeam is returned when balances are requested for a team without members.
var ErrEmptyTeam = errors.New("team has no members")

// ErrMissingIncome is returned when an income-weighted split is requested but
// at least one member has no income greater than zero.
var ErrMissingIncome = errors.New("income-weighted balance requires every member to declare an income")

// MissingIncomeError names the members that prevent an income-weighted split.
// It matches ErrMissingIncome with errors.Is.
type MissingIncomeError struct {
	UserIDs []string
}

func (e *MissingIncomeError) Error() string {
	return fmt.Sprintf("%s (missing for %s)", ErrMissingIncome.Error(), strings.Join(e.UserIDs, ", "))
}

func (e *MissingIncomeError) Is(target error) bool {
	return target == ErrMissingIncome
}

// ComputeBalances splits the team's total spending into fair shares and returns,
// for every member in input order, how much they owe (positive DueAmount) or are
// owed (negative DueAmount).
//
// Members missing from expensesByMember are treated as having spent nothing.
// With weighted set, each fair share is proportional to the member's AvgIncome.
// Sums are accumulated in ascending user id order so results do not depend on
// the order of members. No rounding is applied.
func ComputeBalances(members []domain.User, expensesByMember map[string]domain.ExpenseAggregate, weighted bool) ([]domain.MemberBalance, error) {
	if len(members) == 0 {
		return nil, ErrEmptyTeam
	}

	ordered := make([]domain.User, len(members))
	copy(ordered, members)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].UserID < ordered[j].UserID })

	if weighted {
		var missing []string
		for _, m := range ordered {
			if !m.HasIncome() {
				missing = append(missing, m.UserID)
			}
		}
		if len(missing) > 0 {
			return nil, &MissingIncomeError{UserIDs: missing}
		}
	}

	totalSpent := decimal.Zero
	totalIncome := decimal.Zero
	for _, m := range ordered {
		totalSpent = totalSpent.Add(expensesByMember[m.UserID].TotalAmount)
		if weighted {
			totalIncome = totalIncome.Add(*m.AvgIncome)
		}
	}

	evenShare := totalSpent.Div(decimal.NewFromInt(int64(len(ordered))))

	balances := make([]domain.MemberBalance, len(members))
	for i, m := range members {
		agg := expensesByMember[m.UserID]

		fairShare := evenShare
		if weighted {
			// multiply before dividing to keep the precision of the quotient
			fairShare = totalSpent.Mul(*m.AvgIncome).Div(totalIncome)
		}

		balances[i] = domain.MemberBalance{
			UserID:      m.UserID,
			Username:    m.Username,
			Icon:        m.DisplayIcon(),
			Count:       agg.Count,
			TotalAmount: agg.TotalAmount,
			FairShare:   fairShare,
			DueAmount:   fairShare.Sub(agg.TotalAmount),
		}
	}
	return balances, nil
}

// TotalDue sums the due amounts of balances. For any output of ComputeBalances
// the result is zero up to division precision.
func TotalDue(balances []domain.MemberBalance) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.DueAmount)
	}
	return sum
}
