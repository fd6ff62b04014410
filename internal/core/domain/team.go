package domain

// Team groups the members that pool and split expenses.
// TeamID is chosen by the first member who registers with it.
type Team struct {
	TeamID          string `json:"teamID" db:"team_id"`
	Icon            string `json:"icon" db:"icon"`
	Description     string `json:"description" db:"description"`
	BalanceByIncome bool   `json:"balanceByIncome" db:"balance_by_income"`
	AuditFields
	Members []User `json:"members" db:"-"`
}

// AllMembersHaveIncome reports whether every member declared an income > 0.
// Income-weighted balancing may only be enabled when this holds.
func (t Team) AllMembersHaveIncome() bool {
	for _, m := range t.Members {
		if !m.HasIncome() {
			return false
		}
	}
	return true
}

// MembersWithoutIncome returns the ids of members lacking a positive income.
func (t Team) MembersWithoutIncome() []string {
	var ids []string
	for _, m := range t.Members {
		if !m.HasIncome() {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// Member returns the team member with the given id.
func (t Team) Member(userID string) (User, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return User{}, false
}
