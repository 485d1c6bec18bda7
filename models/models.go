package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Account roles
const (
	RoleAdmin   = "ADMIN"
	RoleTrainer = "TRAINER"
	RoleTrainee = "TRAINEE"
)

// Account statuses
const (
	AccountActive   = "ACTIVE"
	AccountDisabled = "DISABLED"
)

// Plan and subscription types
const (
	PlanTypePunch = "PUNCH"
	PlanTypeTime  = "TIME"
)

// Subscription statuses
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// Attendance payment statuses
const (
	PaymentPaid   = "PAID"
	PaymentUnpaid = "UNPAID"
)

// Settlement statuses
const (
	SettlementDraft = "DRAFT"
	SettlementFinal = "FINAL"
)

// Allocation reasons
const (
	ReasonPunchCredit = "PUNCH_CREDIT"
	ReasonTimeProrata = "TIME_PRORATA"
	ReasonUnpaid      = "UNPAID"
)

// Account model for login credentials
type Account struct {
	BaseModel
	Email    string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Role     string `json:"role" gorm:"size:50;not null;default:'TRAINEE';type:enum('ADMIN','TRAINER','TRAINEE')"` // ADMIN, TRAINER, TRAINEE
	Status   string `json:"status" gorm:"size:50;not null;default:'ACTIVE';type:enum('ACTIVE','DISABLED')"`        // ACTIVE, DISABLED

	// Relationships
	TrainerProfile *TrainerProfile `json:"trainer_profile,omitempty" gorm:"foreignKey:AccountID"`
	TraineeProfile *TraineeProfile `json:"trainee_profile,omitempty" gorm:"foreignKey:AccountID"`
}

// TrainerProfile model
type TrainerProfile struct {
	BaseModel
	Name      string `json:"name" gorm:"size:200;not null"`
	Nickname  string `json:"nickname" gorm:"size:100"`
	AccountID *uint  `json:"account_id" gorm:"uniqueIndex;default:null"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// TraineeProfile model
type TraineeProfile struct {
	BaseModel
	Name      string `json:"name" gorm:"size:200;not null"`
	Nickname  string `json:"nickname" gorm:"size:100"`
	Phone     string `json:"phone" gorm:"size:20"`
	AccountID *uint  `json:"account_id" gorm:"uniqueIndex;default:null"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	Account       *Account       `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Subscriptions []Subscription `json:"subscriptions,omitempty" gorm:"foreignKey:TraineeID"`
}

// GymLocation model
type GymLocation struct {
	BaseModel
	Name     string `json:"name" gorm:"size:200;not null"`
	Address  string `json:"address" gorm:"size:500"`
	Notes    string `json:"notes" gorm:"type:text"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// GymSubscription model for partner gym-access programs
type GymSubscription struct {
	BaseModel
	Name     string `json:"name" gorm:"size:200;not null;uniqueIndex"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// Plan model
type Plan struct {
	BaseModel
	Type         string `json:"type" gorm:"size:50;not null;type:enum('PUNCH','TIME')"` // PUNCH, TIME
	Title        string `json:"title" gorm:"size:255;not null"`
	PriceCents   int64  `json:"price_cents" gorm:"not null"`
	Credits      *int   `json:"credits" gorm:"default:null"`       // PUNCH only
	DurationDays *int   `json:"duration_days" gorm:"default:null"` // TIME only
	IsActive     bool   `json:"is_active" gorm:"default:true"`
}

// TrainingTime model, a reusable HH:MM slot
type TrainingTime struct {
	BaseModel
	StartTime string `json:"start_time" gorm:"size:5;not null"`
	EndTime   string `json:"end_time" gorm:"size:5;not null"`
}

// Subscription model, a trainee's purchased access grant.
// Pricing fields are snapshotted from the plan at purchase so later plan
// edits never change historical settlement math.
type Subscription struct {
	BaseModel
	TraineeID uint       `json:"trainee_id" gorm:"not null;index"`
	PlanID    uint       `json:"plan_id" gorm:"not null"`
	Type      string     `json:"type" gorm:"size:50;not null;type:enum('PUNCH','TIME')"`
	Status    string     `json:"status" gorm:"size:50;not null;default:'ACTIVE';type:enum('ACTIVE','EXPIRED','CANCELLED')"`
	PaidCents int64      `json:"paid_cents" gorm:"not null"`
	StartsAt  time.Time  `json:"starts_at" gorm:"not null"`
	EndsAt    *time.Time `json:"ends_at" gorm:"default:null"` // TIME only

	InitialCredits   *int `json:"initial_credits" gorm:"default:null"`   // PUNCH only
	RemainingCredits *int `json:"remaining_credits" gorm:"default:null"` // PUNCH only

	// Relationships
	Trainee TraineeProfile `json:"trainee,omitempty" gorm:"foreignKey:TraineeID"`
	Plan    Plan           `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// AttendanceRecord model. Immutable after creation: settlements only read
// attendance, never mutate it. Deleted by hard delete only.
type AttendanceRecord struct {
	BaseModel
	TrainerID      uint      `json:"trainer_id" gorm:"not null;index"`
	TraineeID      uint      `json:"trainee_id" gorm:"not null;index"`
	LocationID     uint      `json:"location_id" gorm:"not null"`
	TrainedAt      time.Time `json:"trained_at" gorm:"not null;index"`
	PaymentStatus  string    `json:"payment_status" gorm:"size:50;not null;type:enum('PAID','UNPAID')"`
	SubscriptionID *uint     `json:"subscription_id" gorm:"default:null"` // subscription consumed, if any

	// Relationships
	Trainer      TrainerProfile `json:"trainer,omitempty" gorm:"foreignKey:TrainerID"`
	Trainee      TraineeProfile `json:"trainee,omitempty" gorm:"foreignKey:TraineeID"`
	Location     GymLocation    `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	Subscription *Subscription  `json:"subscription,omitempty" gorm:"foreignKey:SubscriptionID"`
}

// Settlement model. DRAFT settlements may be regenerated or deleted; FINAL is
// terminal and immutable.
type Settlement struct {
	BaseModel
	PeriodStart time.Time `json:"period_start" gorm:"not null"`
	PeriodEnd   time.Time `json:"period_end" gorm:"not null"`
	GeneratedAt time.Time `json:"generated_at" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'DRAFT';type:enum('DRAFT','FINAL')"`
	Notes       string    `json:"notes" gorm:"type:text"`

	// Relationships
	Lines []SettlementLine `json:"lines,omitempty" gorm:"foreignKey:SettlementID"`
}

// SettlementLine model, the per-trainer rollup within one settlement.
// Derived entirely from allocation rows; replaced on regenerate while DRAFT.
type SettlementLine struct {
	BaseModel
	SettlementID          uint  `json:"settlement_id" gorm:"not null;index"`
	TrainerID             uint  `json:"trainer_id" gorm:"not null"`
	AmountCents           int64 `json:"amount_cents" gorm:"not null"`
	AttendanceCount       int   `json:"attendance_count" gorm:"not null"`
	UnpaidAttendanceCount int   `json:"unpaid_attendance_count" gorm:"not null"`
	PunchCents            int64 `json:"punch_cents" gorm:"not null"`
	TimeCents             int64 `json:"time_cents" gorm:"not null"`

	// Relationships
	Trainer TrainerProfile `json:"trainer,omitempty" gorm:"foreignKey:TrainerID"`
}

// AllocationRow model, one monetary attribution of a single attendance record
// to a trainer within a settlement. Append-only once the settlement is FINAL.
type AllocationRow struct {
	BaseModel
	SettlementID     uint   `json:"settlement_id" gorm:"not null;index"`
	AttendanceID     uint   `json:"attendance_id" gorm:"not null;index"`
	TrainerID        uint   `json:"trainer_id" gorm:"not null;index"`
	SubscriptionID   *uint  `json:"subscription_id" gorm:"default:null"`
	SubscriptionType string `json:"subscription_type" gorm:"size:50"` // PUNCH, TIME or empty
	ValueCents       int64  `json:"value_cents" gorm:"not null"`
	Reason           string `json:"reason" gorm:"size:50;not null;type:enum('PUNCH_CREDIT','TIME_PRORATA','UNPAID')"`

	// Relationships
	Attendance AttendanceRecord `json:"attendance,omitempty" gorm:"foreignKey:AttendanceID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	AccountID  uint   `json:"account_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// Notification model
type Notification struct {
	BaseModel
	AccountID uint       `json:"account_id" gorm:"not null"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Type      string     `json:"type" gorm:"size:50;not null;type:enum('info','warning','error','success')"` // info, warning, error, success
	Read      bool       `json:"read" gorm:"default:false"`
	ReadAt    *time.Time `json:"read_at"`

	// Relationships
	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
