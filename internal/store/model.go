package store

import "time"

// User represents a registered borrower account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Application represents a submitted loan application. UserID references the
// submitting User but is advisory: no foreign-key style check ties it to a
// live record.
type Application struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	LoanAmount    float64   `json:"loan_amount"`
	Purpose       string    `json:"purpose,omitempty"`
	MonthlyIncome *float64  `json:"monthly_income,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Snapshot is the aggregate record-store document: the full ordered set of
// users and applications, read and written as one unit.
type Snapshot struct {
	Users        []User        `json:"users"`
	Applications []Application `json:"applications"`
}

// NextUserID returns a creation-timestamp-derived identifier guaranteed not
// to collide with any user already in the snapshot.
func (s *Snapshot) NextUserID() int64 {
	id := time.Now().UnixMilli()
	for _, u := range s.Users {
		if u.ID >= id {
			id = u.ID + 1
		}
	}
	return id
}

// NextApplicationID returns a creation-timestamp-derived identifier guaranteed
// not to collide with any application already in the snapshot.
func (s *Snapshot) NextApplicationID() int64 {
	id := time.Now().UnixMilli()
	for _, a := range s.Applications {
		if a.ID >= id {
			id = a.ID + 1
		}
	}
	return id
}

func (s *Snapshot) clone() Snapshot {
	out := Snapshot{
		Users:        make([]User, len(s.Users)),
		Applications: make([]Application, len(s.Applications)),
	}
	copy(out.Users, s.Users)
	copy(out.Applications, s.Applications)
	for i, a := range s.Applications {
		if a.MonthlyIncome != nil {
			income := *a.MonthlyIncome
			out.Applications[i].MonthlyIncome = &income
		}
	}
	return out
}
