package models

import "time"

// Now 统一时钟，毫秒精度，与 datetime(3) 列保持一致
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Stamper 由持久层在插入和更新时调用
type Stamper interface {
	SetTimestamps(now time.Time, creating bool)
}

type Timestamps struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"createTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updateTime"`
}

func (t *Timestamps) SetTimestamps(now time.Time, creating bool) {
	if creating && t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if creating && !t.UpdatedAt.IsZero() {
		return
	}
	t.UpdatedAt = now
}

// SetTimestamps 支持单个模型和模型切片
func SetTimestamps(v any, creating bool) {
	now := Now()
	switch x := v.(type) {
	case Stamper:
		x.SetTimestamps(now, creating)
	case []Stamper:
		for _, s := range x {
			s.SetTimestamps(now, creating)
		}
	}
}

// NextGeneration 乐观锁的新版本时间，必须严格大于旧值
func NextGeneration(prev time.Time) time.Time {
	now := Now()
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}
