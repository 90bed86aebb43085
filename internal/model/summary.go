package model

import "time"

// SummaryReport is the health summary of one resource kind, either for a
// single system or for the whole fleet. Exactly one of Disks, Pools or
// Replication is set for a classified kind; none is set for unknown kinds.
type SummaryReport struct {
	Kind     string `json:"kind"`
	SystemID string `json:"system_id,omitempty"`
	Total    int    `json:"total"`
	Healthy  int    `json:"healthy"`
	Warning  int    `json:"warning"`
	Critical int    `json:"critical"`

	Disks       *DiskSummary        `json:"disks,omitempty"`
	Pools       *PoolSummary        `json:"pools,omitempty"`
	Replication *ReplicationSummary `json:"replication,omitempty"`
}

// DiskSummary carries the disk-specific counters and call-outs.
type DiskSummary struct {
	TotalDisks     int          `json:"total_disks"`
	HealthyDisks   int          `json:"healthy_disks"`
	Warnings       int          `json:"warnings"`
	TempCritical   int          `json:"temp_critical"`
	Critical       int          `json:"critical"`
	SmartFailures  int          `json:"smart_failures"`
	AvgTemperature *float64     `json:"avg_temperature"`
	P95Temperature *float64     `json:"p95_temperature"`
	HottestDisk    *HottestDisk `json:"hottest_disk"`
}

// HottestDisk names the disk with the highest current temperature.
type HottestDisk struct {
	Disk        string  `json:"disk"`
	Temperature float64 `json:"temperature"`
	SystemID    string  `json:"system_id"`
}

// PoolSummary carries the pool-specific counters.
type PoolSummary struct {
	TotalPools       int     `json:"total_pools"`
	HealthyPools     int     `json:"healthy_pools"`
	DegradedPools    int     `json:"degraded_pools"`
	NeedsScrub       int     `json:"needs_scrub"`
	ActiveResilvers  int     `json:"active_resilvers"`
	CapacityWarnings int     `json:"capacity_warnings"`
	TotalCapacityTB  float64 `json:"total_capacity_tb"`
	UsedCapacityTB   float64 `json:"used_capacity_tb"`
}

// ReplicationSummary carries the replication-specific counters and call-outs.
type ReplicationSummary struct {
	TotalTasks   int        `json:"total_tasks"`
	HealthyTasks int        `json:"healthy_tasks"`
	FailedTasks  int        `json:"failed_tasks"`
	StaleTasks   int        `json:"stale_tasks"`
	LastSuccess  *time.Time `json:"last_success"`
	OldestStale  *StaleTask `json:"oldest_stale"`
}

// StaleTask names the replication task whose last run is the oldest.
type StaleTask struct {
	Task     string  `json:"task"`
	SystemID string  `json:"system_id"`
	HoursAgo float64 `json:"hours_ago"`
}

// DashboardSummary is the fleet overview shown on the landing page.
type DashboardSummary struct {
	TotalSystems   int           `json:"total_systems"`
	HealthySystems int           `json:"healthy_systems"`
	StaleSystems   int           `json:"stale_systems"`
	Alerts         AlertCounts   `json:"alerts"`
	TotalStorageTB float64       `json:"total_storage_tb"`
	Disks          SummaryReport `json:"disks"`
	Pools          SummaryReport `json:"pools"`
	Replication    SummaryReport `json:"replication"`
}

// AlertCounts counts unacknowledged alerts by severity.
type AlertCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}
