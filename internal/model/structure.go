package model

// ── 教务组织结构（大学 → 校区 → 学院 → 系 → 年级）──
//
// 每个节点携带上游提供的稳定 upstream_id 作为去重键，
// 父子关系与上游结构树完全一致，重复同步只更新不复制。

// University 大学 — 对应 universities
type University struct {
	UniversityID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"university_id"`
	UpstreamID   string `gorm:"type:uuid;uniqueIndex;not null"                 json:"upstream_id"`
	Abbr         string `gorm:"type:varchar(50);not null"                      json:"abbr"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	SyncedModel

	Filials []Filial `gorm:"foreignKey:UniversityID;references:UniversityID" json:"filials,omitempty"`
}

func (University) TableName() string { return "universities" }

// Filial 校区 — 对应 filials
type Filial struct {
	FilialID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"filial_id"`
	UpstreamID   string `gorm:"type:uuid;uniqueIndex;not null"                 json:"upstream_id"`
	Abbr         string `gorm:"type:varchar(50);not null"                      json:"abbr"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	UniversityID string `gorm:"type:uuid;not null"                             json:"university_id"`
	SyncedModel

	Faculties []Faculty `gorm:"foreignKey:FilialID;references:FilialID" json:"faculties,omitempty"`
}

func (Filial) TableName() string { return "filials" }

// Faculty 学院 — 对应 faculties
type Faculty struct {
	FacultyID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"faculty_id"`
	UpstreamID string `gorm:"type:uuid;uniqueIndex;not null"                 json:"upstream_id"`
	Abbr       string `gorm:"type:varchar(50);not null"                      json:"abbr"`
	Name       string `gorm:"type:varchar(200);not null"                     json:"name"`
	FilialID   string `gorm:"type:uuid;not null"                             json:"filial_id"`
	SyncedModel

	Departments []Department `gorm:"foreignKey:FacultyID;references:FacultyID" json:"departments,omitempty"`
}

func (Faculty) TableName() string { return "faculties" }

// Department 系 — 对应 departments
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	UpstreamID   string `gorm:"type:uuid;uniqueIndex;not null"                 json:"upstream_id"`
	Abbr         string `gorm:"type:varchar(50);not null"                      json:"abbr"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	FacultyID    string `gorm:"type:uuid;not null"                             json:"faculty_id"`
	SyncedModel

	Courses []Course `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"courses,omitempty"`
}

func (Department) TableName() string { return "departments" }

// Course 年级 — 对应 courses
type Course struct {
	CourseID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	UpstreamID   string `gorm:"type:uuid;uniqueIndex;not null"                 json:"upstream_id"`
	Abbr         string `gorm:"type:varchar(50);not null"                      json:"abbr"`
	CourseNum    int    `gorm:"type:smallint;not null;default:1"               json:"course_num"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	SyncedModel

	Groups []Group `gorm:"foreignKey:CourseID;references:CourseID" json:"groups,omitempty"`
}

func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/structure.go
