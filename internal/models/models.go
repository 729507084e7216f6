package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string     `gorm:"uniqueIndex;not null"     json:"email"`
	Name         string     `gorm:"not null"                 json:"name"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Role         string     `gorm:"not null;default:admin"   json:"role"`
	Status       string     `gorm:"not null;default:active"  json:"status"`
	ImageURL     string     `json:"image_url"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Student struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string            `gorm:"not null;index"       json:"name"`
	RollNo        string            `gorm:"not null"             json:"roll_no"`
	ClassName     string            `gorm:"column:class_name;not null;index" json:"class"`
	Section       string            `json:"section"`
	AdmissionNo   string            `json:"admission_no"`
	AdmissionDate *time.Time        `json:"admission_date"`
	PhotoURL      string            `json:"photo_url"`
	PersonalInfo  datatypes.JSONMap `json:"personal_info"`
	IsActive      bool              `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Teacher struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string            `gorm:"not null;index"       json:"name"`
	EmployeeID   string            `gorm:"uniqueIndex;not null" json:"employee_id"`
	Subject      string            `gorm:"not null"             json:"subject"`
	Department   string            `json:"department"`
	Designation  string            `json:"designation"`
	JoinDate     *time.Time        `json:"join_date"`
	PhotoURL     string            `json:"photo_url"`
	Status       string            `gorm:"default:Active" json:"status"`
	PersonalInfo datatypes.JSONMap `json:"personal_info"`
	IsActive     bool              `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (t *Teacher) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Class struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassName      string    `gorm:"column:class_name;not null" json:"class"`
	Section        string    `gorm:"not null"                   json:"section"`
	ClassTeacherID string    `json:"class_teacher_id"`
	Capacity       int       `gorm:"default:40" json:"capacity"`
	Room           string    `json:"room"`
	AcademicYear   string    `json:"academic_year"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Exam struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Subject      string     `gorm:"not null"             json:"subject"`
	Grade        string     `gorm:"not null;index"       json:"grade"`
	AcademicYear string     `gorm:"not null"             json:"academic_year"`
	ExamDate     *time.Time `gorm:"index" json:"exam_date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Duration     string     `json:"duration"`
	Location     string     `json:"location"`
	Participants int        `gorm:"default:0" json:"participants"`
	Status       string     `gorm:"default:Draft" json:"status"`
	Color        string     `gorm:"default:#3B82F6" json:"color"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (e *Exam) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type AcademicYear struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	YearName  string     `gorm:"uniqueIndex;not null"     json:"year_name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsCurrent bool       `gorm:"default:false" json:"is_current"`
	IsActive  bool       `gorm:"default:true"  json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Notice struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Content        string         `gorm:"not null" json:"content"`
	Category       string         `json:"category"`
	Priority       string         `gorm:"default:normal" json:"priority"`
	TargetAudience string         `json:"target_audience"`
	PublishedBy    string         `json:"published_by"`
	PublishedDate  *time.Time     `json:"published_date"`
	ExpiryDate     *time.Time     `json:"expiry_date"`
	Status         string         `gorm:"default:draft;index" json:"status"`
	Attachments    datatypes.JSON `json:"attachments"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Admission struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID  string     `gorm:"uniqueIndex;not null" json:"application_id"`
	StudentName    string     `gorm:"not null" json:"student_name"`
	ParentName     string     `gorm:"not null" json:"parent_name"`
	Email          string     `gorm:"not null" json:"email"`
	DialCode       string     `gorm:"default:+91" json:"dial_code"`
	Phone          string     `gorm:"not null" json:"phone"`
	GradeApplying  string     `gorm:"not null;index" json:"grade_applying"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Address        string     `json:"address"`
	PreviousSchool string     `json:"previous_school"`
	Notes          string     `json:"notes"`
	Status         string     `gorm:"default:pending;index" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (a *Admission) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ContactRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	DialCode  string    `gorm:"default:+91" json:"dial_code"`
	Phone     string    `gorm:"not null" json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `gorm:"not null" json:"message"`
	Status    string    `gorm:"default:new;index" json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *ContactRequest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PageSection is one JSONB block of a public site page, unique per
// (page_slug, section_key).
type PageSection struct {
	ID         uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	PageSlug   string            `gorm:"uniqueIndex:idx_page_section;not null" json:"page_slug"`
	SectionKey string            `gorm:"uniqueIndex:idx_page_section;not null" json:"section_key"`
	Content    datatypes.JSONMap `json:"content"`
	OrderIndex int               `gorm:"default:0" json:"order_index"`
	IsActive   bool              `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type Setting struct {
	ID           uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	SettingKey   string            `gorm:"uniqueIndex;not null" json:"setting_key"`
	SettingValue datatypes.JSONMap `json:"setting_value"`
	Category     string            `gorm:"index" json:"category"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&AdminUser{}, &Student{}, &Teacher{}, &Class{}, &Exam{}, &AcademicYear{},
		&Notice{}, &Admission{}, &ContactRequest{}, &PageSection{}, &Setting{},
	}
}
