package models

import (
	"time"
)

type Workspace struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text"`
	Name       string    `json:"name" gorm:"type:text;uniqueIndex:workspace_name;not null"`
	IsArchived bool      `json:"isArchived" gorm:"type:boolean;not null;default:false"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate      time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type OriginRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	WorkspaceID string    `json:"workspaceId" gorm:"type:text;index;not null"`
	Workspace   Workspace `json:"-" gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE;"`
	Path        string    `json:"path" gorm:"type:text;not null"`
	Language    string    `json:"language" gorm:"type:text"`
	Timestamp   int64     `json:"timestamp" gorm:"type:bigint"`
	GeneratedBy string    `json:"generatedBy" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type LineSignature struct {
	ID        int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	RecordID  string       `json:"recordId" gorm:"type:text;index;not null"`
	Record    OriginRecord `json:"-" gorm:"foreignKey:RecordID;references:ID;constraint:OnDelete:CASCADE;"`
	Signature string       `json:"signature" gorm:"type:char(64);not null"`
	Order     int          `json:"order" gorm:"column:line_order;type:integer;not null"`
}

type AccessToken struct {
	ID          string     `json:"id" gorm:"primaryKey;type:text"`
	WorkspaceID string     `json:"workspaceId" gorm:"type:text;index;not null"`
	Workspace   Workspace  `json:"-" gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE;"`
	TokenHash   string     `json:"-" gorm:"type:char(64);uniqueIndex:access_token_hash;not null"`
	Prefix      string     `json:"prefix" gorm:"type:text;not null"`
	Description string     `json:"description" gorm:"type:text"`
	IsRevoked   bool       `json:"isRevoked" gorm:"type:boolean;not null;default:false"`
	LastUsedAt  *time.Time `json:"lastUsedAt" gorm:"type:timestamp with time zone"`
	ExpiresAt   *time.Time `json:"expiresAt" gorm:"type:timestamp with time zone"`
	CDate       time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
