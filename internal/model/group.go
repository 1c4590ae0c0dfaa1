package model

// Group 班组 — 对应 groups
// 上游结构树的叶子节点，课表按组拉取
type Group struct {
	GroupID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	UpstreamID  string `gorm:"type:uuid;uniqueIndex;not null"                 json:"upstream_id"`
	Abbr        string `gorm:"type:varchar(50);not null;index"                json:"abbr"`
	SemesterNum int    `gorm:"type:smallint;not null;default:1"               json:"semester_num"`
	CourseID    string `gorm:"type:uuid;not null"                             json:"course_id"`
	SyncedModel

	Course        *Course        `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
	SchedulePairs []SchedulePair `gorm:"many2many:schedule_pair_groups;foreignKey:GroupID;joinForeignKey:GroupID;references:SchedulePairID;joinReferences:SchedulePairID" json:"schedule_pairs,omitempty"`
}

func (Group) TableName() string { return "groups" }
