package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/medrhouma/Projet-d-integration-sub000/config"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
)

// ── 标准时段网格 ──
//
// 每周 6 个上课日（周一至周六），每天固定若干标准时段，其中恰好一个为午休。
// 网格在启动时由配置构建，此后只读；所有换算均为纯函数，不做任何 I/O。

// DaysPerWeek 每周上课天数（周一至周六，无周日）
const DaysPerWeek = 6

// WeekdayNames 网格列头
var WeekdayNames = [DaysPerWeek]string{"周一", "周二", "周三", "周四", "周五", "周六"}

var (
	ErrDayIndexOutOfRange  = errors.New("星期序号超出范围")
	ErrSlotIndexOutOfRange = errors.New("时段序号超出范围")
)

// Slot 一个标准时段
type Slot struct {
	Start   model.TimeOfDay
	End     model.TimeOfDay
	IsPause bool
}

// SlotGrid 每周标准时段网格
type SlotGrid struct {
	slots     []Slot
	tolerance model.TimeOfDay
}

// NewSlotGrid 由配置构建网格，校验时段有序、不重叠、起止合法且恰好一个午休
func NewSlotGrid(cfg config.TimetableConfig) (*SlotGrid, error) {
	if len(cfg.Slots) == 0 {
		return nil, errors.New("时段网格不能为空")
	}

	slots := make([]Slot, 0, len(cfg.Slots))
	pauses := 0
	for i, sc := range cfg.Slots {
		start, err := model.ParseTimeOfDay(sc.Start)
		if err != nil {
			return nil, fmt.Errorf("第 %d 个时段开始时间非法: %w", i, err)
		}
		end, err := model.ParseTimeOfDay(sc.End)
		if err != nil {
			return nil, fmt.Errorf("第 %d 个时段结束时间非法: %w", i, err)
		}
		if start >= end {
			return nil, fmt.Errorf("第 %d 个时段开始时间必须早于结束时间", i)
		}
		if i > 0 && start < slots[i-1].End {
			return nil, fmt.Errorf("第 %d 个时段与前一时段重叠或未按时间排序", i)
		}
		if sc.Pause {
			pauses++
		}
		slots = append(slots, Slot{Start: start, End: end, IsPause: sc.Pause})
	}
	if pauses != 1 {
		return nil, fmt.Errorf("时段网格必须恰好包含一个午休时段，实际 %d 个", pauses)
	}

	return &SlotGrid{
		slots:     slots,
		tolerance: model.TimeOfDay(cfg.SlotTolerance / time.Minute),
	}, nil
}

// Slots 返回时段列表副本
func (g *SlotGrid) Slots() []Slot {
	out := make([]Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

// NumSlots 每天的时段数（含午休）
func (g *SlotGrid) NumSlots() int { return len(g.slots) }

// WeekStart 返回锚点所在周的周一
// time.Weekday 以周日为 0，这里把周日视为一周的第 7 天
func (g *SlotGrid) WeekStart(anchor time.Time) time.Time {
	d := model.CivilDate(anchor)
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	return d.AddDate(0, 0, -(wd - 1))
}

// ResolveDate 锚点所在周的周一 + dayIndex 天（0=周一 … 5=周六）
func (g *SlotGrid) ResolveDate(anchor time.Time, dayIndex int) (time.Time, error) {
	if dayIndex < 0 || dayIndex >= DaysPerWeek {
		return time.Time{}, fmt.Errorf("%w: %d", ErrDayIndexOutOfRange, dayIndex)
	}
	return g.WeekStart(anchor).AddDate(0, 0, dayIndex), nil
}

// DayIndex ResolveDate 的逆运算；日期不在锚点所在周或为周日时返回 false
func (g *SlotGrid) DayIndex(anchor, date time.Time) (int, bool) {
	offset := model.DaysBetween(g.WeekStart(anchor), date)
	if offset < 0 || offset >= DaysPerWeek {
		return 0, false
	}
	return offset, true
}

// SlotWindow 返回时段的起止时刻与是否午休
func (g *SlotGrid) SlotWindow(slotIndex int) (model.TimeOfDay, model.TimeOfDay, bool, error) {
	if slotIndex < 0 || slotIndex >= len(g.slots) {
		return 0, 0, false, fmt.Errorf("%w: %d", ErrSlotIndexOutOfRange, slotIndex)
	}
	s := g.slots[slotIndex]
	return s.Start, s.End, s.IsPause, nil
}

// LocateSlot 找到给定开始时刻对应的标准时段，仅用于把已存课程投影到网格。
// 优先匹配开始时刻在容差内的可排课时段，其次匹配包含该时刻的时段；都不匹配时返回 false。
// 午休不参与容差匹配：紧贴午休之前开始的课程仍归入包含它的时段。
func (g *SlotGrid) LocateSlot(tod model.TimeOfDay) (int, bool) {
	best, bestDiff := -1, g.tolerance+1
	for i, s := range g.slots {
		if s.IsPause {
			continue
		}
		diff := tod - s.Start
		if diff < 0 {
			diff = -diff
		}
		if diff <= g.tolerance && diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best >= 0 {
		return best, true
	}

	for i, s := range g.slots {
		if s.Start <= tod && tod < s.End {
			return i, true
		}
	}
	return 0, false
}
