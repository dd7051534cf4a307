// 包 reports：模拟的市政服务报告（服务类型、处理状态与落点）
package reports

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

// Service：封闭的服务类型集合，顺序即生成顺序与下拉框顺序
type Service string

const (
	WaterLeak   Service = "water_leak"
	Fire        Service = "fire"
	GasLeak     Service = "gas_leak"
	Crime       Service = "crime"
	Pothole     Service = "pothole"
	Flood       Service = "flood"
	PowerOutage Service = "power_outage"
)

var services = []Service{WaterLeak, Fire, GasLeak, Crime, Pothole, Flood, PowerOutage}

var serviceLabels = map[Service]string{
	WaterLeak:   "Fugas de Agua",
	Fire:        "Incendios",
	GasLeak:     "Fugas de Gas",
	Crime:       "Delitos",
	Pothole:     "Baches",
	Flood:       "Inundaciones",
	PowerOutage: "Corte de Electricidad",
}

// Services：返回副本，调用方可自由修改
func Services() []Service { return append([]Service(nil), services...) }

func (s Service) Label() string { return serviceLabels[s] }

func (s Service) Valid() bool {
	_, ok := serviceLabels[s]
	return ok
}

// ParseService：接受键名或展示名
func ParseService(v string) (Service, error) {
	for _, s := range services {
		if v == string(s) || v == s.Label() {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown service %q", v)
}

// Status：处理状态
type Status string

const (
	InProgress Status = "in_progress"
	Resolved   Status = "resolved"
	Pending    Status = "pending"
)

// AllStatuses：状态筛选的“全部”哨兵值
const AllStatuses = "all"

var statuses = []Status{InProgress, Resolved, Pending}

var statusLabels = map[Status]string{
	InProgress: "En proceso",
	Resolved:   "Resuelto",
	Pending:    "Pendiente",
}

func Statuses() []Status { return append([]Status(nil), statuses...) }

func (s Status) Label() string { return statusLabels[s] }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatusFilter：空串或 all/Todos 返回 nil（不过滤）
func ParseStatusFilter(v string) (*Status, error) {
	if v == "" || v == AllStatuses || v == "Todos" {
		return nil, nil
	}
	for _, s := range statuses {
		if v == string(s) || v == s.Label() {
			st := s
			return &st, nil
		}
	}
	return nil, fmt.Errorf("unknown status %q", v)
}

// Report：一条模拟报告；启动期生成后只读
type Report struct {
	Colonia    string    `json:"colonia"`
	Service    Service   `json:"service"`
	Status     Status    `json:"status"`
	ReportedAt time.Time `json:"reported_at"`
	Location   orb.Point `json:"location"`
}
