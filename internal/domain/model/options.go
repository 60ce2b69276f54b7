package model

import (
	"fmt"
	"strings"
)

// ScheduleStatus is the lifecycle state of a production schedule.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "DRAFT"
	ScheduleStatusAnnounced ScheduleStatus = "ANNOUNCED"
	ScheduleStatusOpen      ScheduleStatus = "OPEN"
	ScheduleStatusClosed    ScheduleStatus = "CLOSED"
	ScheduleStatusFulfilled ScheduleStatus = "FULFILLED"
)

// OrderStatus is the state of a customer order. OrderStatusAll is a filter
// value only and never appears on an order.
type OrderStatus string

const (
	OrderStatusAll       OrderStatus = "all"
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// StatusOption is a selectable status with its display label. Color is a hex
// color string and may be empty; Count is nil for options that carry no tally.
type StatusOption struct {
	Label string
	Value string
	Color string
	Count *int
}

// ScheduleStatusOptions lists schedule statuses in lifecycle order.
func ScheduleStatusOptions() []StatusOption {
	return []StatusOption{
		{Label: "草稿", Value: string(ScheduleStatusDraft)},
		{Label: "預告", Value: string(ScheduleStatusAnnounced)},
		{Label: "收單中", Value: string(ScheduleStatusOpen)},
		{Label: "已結單", Value: string(ScheduleStatusClosed)},
		{Label: "出貨結束", Value: string(ScheduleStatusFulfilled)},
	}
}

// OrderStatusOptions lists order status filters, "all" first.
func OrderStatusOptions() []StatusOption {
	return []StatusOption{
		{Label: "全部", Value: string(OrderStatusAll)},
		{Label: "已下單", Value: string(OrderStatusOrdered), Color: "#3b82f6", Count: new(int)},
		{Label: "已完成", Value: string(OrderStatusCompleted), Color: "#10b981", Count: new(int)},
		{Label: "已取消", Value: string(OrderStatusCancelled), Color: "#ef4444", Count: new(int)},
	}
}

// ParseScheduleStatus accepts a schedule status value case-insensitively.
func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	for _, opt := range ScheduleStatusOptions() {
		if strings.EqualFold(opt.Value, s) {
			return ScheduleStatus(opt.Value), nil
		}
	}
	return "", fmt.Errorf("unknown schedule status %q", s)
}

// ParseOrderStatus accepts an order status value case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, opt := range OrderStatusOptions() {
		if strings.EqualFold(opt.Value, s) {
			return OrderStatus(opt.Value), nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}
