package models

import (
	"errors"
	"sort"
	"time"
)

// MaxDoctorDepartments caps the departments a doctor may be linked to
const MaxDoctorDepartments = 3

var ErrTooManyDepartments = errors.New("doctor may be linked to at most 3 departments")

// Doctor represents the doctors table.
// Each doctor is linked to exactly one user account and to 1-3 departments.
type Doctor struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;uniqueIndex" json:"user_id"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	Title        string       `gorm:"size:50;not null" json:"title"`
	Specialty    string       `gorm:"size:200" json:"specialty"`
	Introduction string       `gorm:"size:500" json:"introduction"`
	PhotoURL     string       `gorm:"column:photo_url;size:255" json:"photo_url"`
	Departments  []Department `gorm:"many2many:doctor_department;joinForeignKey:DoctorID;joinReferences:DepartmentID" json:"-"`
	Status       int          `gorm:"not null;index" json:"status"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for Doctor model
func (Doctor) TableName() string {
	return "doctors"
}

// SetDepartments replaces the department set. Duplicate ids collapse into one entry.
// The current set is kept when the replacement exceeds the cap.
func (d *Doctor) SetDepartments(departments []Department) error {
	set := make([]Department, 0, len(departments))
	seen := make(map[uint]bool, len(departments))
	for _, dept := range departments {
		if seen[dept.ID] {
			continue
		}
		seen[dept.ID] = true
		set = append(set, dept)
	}
	if len(set) > MaxDoctorDepartments {
		return ErrTooManyDepartments
	}
	d.Departments = set
	return nil
}

// AddDepartment links one more department; re-adding a linked department is a no-op
func (d *Doctor) AddDepartment(department Department) error {
	if d.HasDepartment(department.ID) {
		return nil
	}
	if len(d.Departments) >= MaxDoctorDepartments {
		return ErrTooManyDepartments
	}
	d.Departments = append(d.Departments, department)
	return nil
}

func (d *Doctor) HasDepartment(departmentID uint) bool {
	for _, dept := range d.Departments {
		if dept.ID == departmentID {
			return true
		}
	}
	return false
}

// SortedDepartments returns the linked departments ordered by ascending id
func (d *Doctor) SortedDepartments() []Department {
	sorted := make([]Department, len(d.Departments))
	copy(sorted, d.Departments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// PrimaryDepartment is the linked department with the smallest id
func (d *Doctor) PrimaryDepartment() (Department, bool) {
	sorted := d.SortedDepartments()
	if len(sorted) == 0 {
		return Department{}, false
	}
	return sorted[0], true
}
