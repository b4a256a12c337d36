package models

import "time"

// ProductionStatus tracks a physical credential card through the print
// vendor fulfillment pipeline. The seven states are strictly ordered.
type ProductionStatus string

const (
	ProductionRegistered   ProductionStatus = "cadastrado"
	ProductionBatched      ProductionStatus = "em_lote"
	ProductionExported     ProductionStatus = "exportado"
	ProductionInProduction ProductionStatus = "em_producao"
	ProductionProduced     ProductionStatus = "produzido"
	ProductionShipped      ProductionStatus = "enviado"
	ProductionDelivered    ProductionStatus = "entregue"
)

// productionOrder fixes the workflow order. Progress, Next and CanAdvance
// are all derived from positions in this slice.
var productionOrder = []ProductionStatus{
	ProductionRegistered,
	ProductionBatched,
	ProductionExported,
	ProductionInProduction,
	ProductionProduced,
	ProductionShipped,
	ProductionDelivered,
}

// ProductionOrder returns the workflow states in order.
func ProductionOrder() []ProductionStatus {
	out := make([]ProductionStatus, len(productionOrder))
	copy(out, productionOrder)
	return out
}

func (p ProductionStatus) index() int {
	for i, s := range productionOrder {
		if s == p {
			return i
		}
	}
	return -1
}

// IsValid reports whether p is one of the seven workflow states.
func (p ProductionStatus) IsValid() bool {
	return p.index() >= 0
}

// ProgressPercent maps the status onto fulfillment progress:
// (index+1)/7 * 100. Unknown statuses report zero.
func (p ProductionStatus) ProgressPercent() float64 {
	i := p.index()
	if i < 0 {
		return 0
	}
	return float64(i+1) / float64(len(productionOrder)) * 100
}

// Next returns the following workflow state. ok is false for the terminal
// state and for unknown statuses.
func (p ProductionStatus) Next() (next ProductionStatus, ok bool) {
	i := p.index()
	if i < 0 || i == len(productionOrder)-1 {
		return "", false
	}
	return productionOrder[i+1], true
}

// CanAdvance reports whether target is strictly ahead of p in the workflow.
// Skipping intermediate states is allowed; moving backward is not. This is
// a query primitive only: the transition write path deliberately does not
// consult it (see TransitionStatus).
func (p ProductionStatus) CanAdvance(target ProductionStatus) bool {
	return target.index() > p.index()
}

// Label returns the display name of the status. Unknown statuses fall back
// to the initial state's display, matching how dashboards treat records
// that predate the workflow field.
func (p ProductionStatus) Label() string {
	switch p {
	case ProductionRegistered:
		return "Cadastrado"
	case ProductionBatched:
		return "Em Lote"
	case ProductionExported:
		return "Exportado"
	case ProductionInProduction:
		return "Em Produção"
	case ProductionProduced:
		return "Produzido"
	case ProductionShipped:
		return "Enviado"
	case ProductionDelivered:
		return "Entregue"
	default:
		return ProductionRegistered.Label()
	}
}

// Description returns the display description of the status.
func (p ProductionStatus) Description() string {
	switch p {
	case ProductionRegistered:
		return "Aguardando processamento"
	case ProductionBatched:
		return "Adicionado a um lote para exportação"
	case ProductionExported:
		return "Dados enviados para a gráfica"
	case ProductionInProduction:
		return "Gráfica está produzindo a credencial"
	case ProductionProduced:
		return "Credencial pronta"
	case ProductionShipped:
		return "Credencial a caminho"
	case ProductionDelivered:
		return "Credencial recebida pelo capelão"
	default:
		return ProductionRegistered.Description()
	}
}

// Color returns the display color tier of the status.
func (p ProductionStatus) Color() string {
	switch p {
	case ProductionRegistered:
		return "gray"
	case ProductionBatched:
		return "blue"
	case ProductionExported:
		return "purple"
	case ProductionInProduction:
		return "yellow"
	case ProductionProduced:
		return "indigo"
	case ProductionShipped:
		return "cyan"
	case ProductionDelivered:
		return "green"
	default:
		return ProductionRegistered.Color()
	}
}

// HistoryEntry is one append-only audit record of a production-status
// transition. Entries are immutable once written.
type HistoryEntry struct {
	Status         ProductionStatus `json:"status"`
	Observation    string           `json:"observation"`
	Timestamp      time.Time        `json:"timestamp"`
	PreviousStatus ProductionStatus `json:"previous_status"`
}
