package model

// Teacher 教师 — 对应 teachers
// 上游为教师提供稳定 uuid，直接以 upstream_id 去重
type Teacher struct {
	TeacherID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	UpstreamID string `gorm:"type:uuid;uniqueIndex;not null"                 json:"upstream_id"`
	FirstName  string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	MiddleName string `gorm:"type:varchar(100);not null"                     json:"middle_name"`
	LastName   string `gorm:"type:varchar(100);not null;index"               json:"last_name"`
	SyncedModel

	SchedulePairs []SchedulePair `gorm:"many2many:schedule_pair_teachers;foreignKey:TeacherID;joinForeignKey:TeacherID;references:SchedulePairID;joinReferences:SchedulePairID" json:"schedule_pairs,omitempty"`
}

func (Teacher) TableName() string { return "teachers" }
