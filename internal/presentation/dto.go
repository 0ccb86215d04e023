package presentation

import (
	"github.com/zjrosen/mvc/internal/facade"
)

// ReportDTO is the document printed by `mvc inspect`.
type ReportDTO struct {
	Cores  []facade.Inventory `json:"cores" yaml:"cores"`
	Totals TotalsDTO          `json:"totals" yaml:"totals"`
}

// TotalsDTO sums registrations across cores.
type TotalsDTO struct {
	Cores     int   `json:"cores" yaml:"cores"`
	Proxies   int   `json:"proxies" yaml:"proxies"`
	Mediators int   `json:"mediators" yaml:"mediators"`
	Commands  int   `json:"commands" yaml:"commands"`
	Observers int   `json:"observers" yaml:"observers"`
	Executed  int64 `json:"commands_executed" yaml:"commands_executed"`
	Failed    int64 `json:"commands_failed" yaml:"commands_failed"`
}

// FromInventories builds a report, computing totals.
func FromInventories(inventories []facade.Inventory) ReportDTO {
	report := ReportDTO{
		Cores:  inventories,
		Totals: TotalsDTO{Cores: len(inventories)},
	}
	if report.Cores == nil {
		report.Cores = []facade.Inventory{}
	}
	for _, inv := range inventories {
		report.Totals.Proxies += len(inv.Proxies)
		report.Totals.Mediators += len(inv.Mediators)
		report.Totals.Commands += len(inv.Commands)
		for _, n := range inv.Observers {
			report.Totals.Observers += n
		}
		report.Totals.Executed += inv.Executed
		report.Totals.Failed += inv.Failed
	}
	return report
}
