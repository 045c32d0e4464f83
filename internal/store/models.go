package store

import (
	"time"

	"github.com/lib/pq"
)

// Vehicle represents the 'frota' table.
type Vehicle struct {
	ID                int64     `db:"id" json:"id"`
	Code              string    `db:"codigo" json:"codigo"`
	Plate             string    `db:"placa" json:"placa"`
	TrailerPlate      *string   `db:"placa_carreta" json:"placa_carreta"`
	Model             string    `db:"modelo" json:"modelo"`
	ManufactureYear   *int      `db:"ano_fabricacao" json:"ano_fabricacao"`
	Status            string    `db:"status" json:"status"`
	FixedDriverID     *int64    `db:"motorista_fixo_id" json:"motorista_fixo_id"`
	CapacityTons      *float64  `db:"capacidade_toneladas" json:"capacidade_toneladas"`
	Odometer          *int64    `db:"km_atual" json:"km_atual"`
	FuelType          string    `db:"tipo_combustivel" json:"tipo_combustivel"`
	VehicleType       string    `db:"tipo_veiculo" json:"tipo_veiculo"`
	Renavam           *string   `db:"renavam" json:"renavam"`
	TrailerRenavam    *string   `db:"renavam_carreta" json:"renavam_carreta"`
	Chassis           *string   `db:"chassi" json:"chassi"`
	AnttRegistration  *string   `db:"registro_antt" json:"registro_antt"`
	InsuranceExpiry   *Date     `db:"validade_seguro" json:"validade_seguro"`
	LicensingExpiry   *Date     `db:"validade_licenciamento" json:"validade_licenciamento"`
	OwnershipType     string    `db:"proprietario_tipo" json:"proprietario_tipo"`
	LastMaintenance   *Date     `db:"ultima_manutencao_data" json:"ultima_manutencao_data"`
	NextMaintenanceKm *int64    `db:"proxima_manutencao_km" json:"proxima_manutencao_km"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// VehicleSummary is the bound vehicle embedded in driver responses.
type VehicleSummary struct {
	ID          int64  `db:"id" json:"id"`
	Plate       string `db:"placa" json:"placa"`
	Model       string `db:"modelo" json:"modelo"`
	VehicleType string `db:"tipo_veiculo" json:"tipo_veiculo"`
}

// Driver represents the 'motoristas' table.
type Driver struct {
	ID               int64     `db:"id" json:"id"`
	Code             string    `db:"codigo" json:"codigo"`
	Name             string    `db:"nome" json:"nome"`
	Document         string    `db:"documento" json:"documento"`
	Phone            *string   `db:"telefone" json:"telefone"`
	Email            *string   `db:"email" json:"email"`
	Address          *string   `db:"endereco" json:"endereco"`
	License          *string   `db:"cnh" json:"cnh"`
	LicenseExpiry    *Date     `db:"cnh_validade" json:"cnh_validade"`
	LicenseCategory  *string   `db:"cnh_categoria" json:"cnh_categoria"`
	Status           string    `db:"status" json:"status"`
	Type             string    `db:"tipo" json:"tipo"`
	HiredAt          *Date     `db:"data_admissao" json:"data_admissao"`
	DismissedAt      *Date     `db:"data_desligamento" json:"data_desligamento"`
	PaymentMethod    *string   `db:"tipo_pagamento" json:"tipo_pagamento"`
	PixKeyType       *string   `db:"chave_pix_tipo" json:"chave_pix_tipo"`
	PixKey           *string   `db:"chave_pix" json:"chave_pix"`
	Bank             *string   `db:"banco" json:"banco"`
	Agency           *string   `db:"agencia" json:"agencia"`
	Account          *string   `db:"conta" json:"conta"`
	AccountType      *string   `db:"tipo_conta" json:"tipo_conta"`
	RevenueGenerated float64   `db:"receita_gerada" json:"receita_gerada"`
	TripsCompleted   int       `db:"viagens_realizadas" json:"viagens_realizadas"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	BoundVehicle *VehicleSummary `db:"-" json:"veiculo_vinculado,omitempty"`
}

// Freight represents the 'fretes' table.
type Freight struct {
	ID            int64     `db:"id" json:"id"`
	Code          string    `db:"codigo_frete" json:"codigo_frete"`
	Origin        string    `db:"origem" json:"origem"`
	Destination   string    `db:"destino" json:"destino"`
	DriverID      int64     `db:"motorista_id" json:"motorista_id"`
	DriverName    string    `db:"motorista_nome" json:"motorista_nome"`
	VehicleID     int64     `db:"caminhao_id" json:"caminhao_id"`
	VehiclePlate  string    `db:"caminhao_placa" json:"caminhao_placa"`
	Ticket        *string   `db:"ticket" json:"ticket"`
	InvoiceNumber *string   `db:"numero_nota_fiscal" json:"numero_nota_fiscal"`
	FarmID        *int64    `db:"fazenda_id" json:"fazenda_id"`
	FarmName      *string   `db:"fazenda_nome" json:"fazenda_nome"`
	Commodity     string    `db:"mercadoria" json:"mercadoria"`
	Variety       *string   `db:"variedade" json:"variedade"`
	Date          Date      `db:"data_frete" json:"data_frete"`
	Sacks         int64     `db:"quantidade_sacas" json:"quantidade_sacas"`
	Tons          float64   `db:"toneladas" json:"toneladas"`
	RatePerTon    float64   `db:"valor_por_tonelada" json:"valor_por_tonelada"`
	Revenue       float64   `db:"receita" json:"receita"`
	Costs         float64   `db:"custos" json:"custos"`
	Result        float64   `db:"resultado" json:"resultado"`
	PaymentID     *int64    `db:"pagamento_id" json:"pagamento_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Settled reports whether the freight is covered by a payment.
func (f *Freight) Settled() bool {
	return f.PaymentID != nil
}

// Cost represents the 'custos' table.
type Cost struct {
	ID          int64     `db:"id" json:"id"`
	FreightID   int64     `db:"frete_id" json:"frete_id"`
	Type        string    `db:"tipo" json:"tipo"`
	Description string    `db:"descricao" json:"descricao"`
	Amount      float64   `db:"valor" json:"valor"`
	Date        Date      `db:"data" json:"data"`
	HasReceipt  bool      `db:"comprovante" json:"comprovante"`
	Notes       *string   `db:"observacoes" json:"observacoes"`
	Driver      *string   `db:"motorista" json:"motorista"`
	Vehicle     *string   `db:"caminhao" json:"caminhao"`
	Route       *string   `db:"rota" json:"rota"`
	Liters      *float64  `db:"litros" json:"litros"`
	FuelType    *string   `db:"tipo_combustivel" json:"tipo_combustivel"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Payment represents the 'pagamentos' table.
type Payment struct {
	ID                int64         `db:"id" json:"id"`
	Code              string        `db:"codigo_pagamento" json:"codigo_pagamento"`
	DriverID          int64         `db:"motorista_id" json:"motorista_id"`
	DriverName        string        `db:"motorista_nome" json:"motorista_nome"`
	Period            string        `db:"periodo_fretes" json:"periodo_fretes"`
	FreightCount      int           `db:"quantidade_fretes" json:"quantidade_fretes"`
	FreightIDs        pq.Int64Array `db:"fretes_incluidos" json:"fretes_incluidos"`
	TotalTons         float64       `db:"total_toneladas" json:"total_toneladas"`
	RatePerTon        float64       `db:"valor_por_tonelada" json:"valor_por_tonelada"`
	TotalValue        float64       `db:"valor_total" json:"valor_total"`
	PaymentDate       Date          `db:"data_pagamento" json:"data_pagamento"`
	Status            string        `db:"status" json:"status"`
	Method            string        `db:"metodo_pagamento" json:"metodo_pagamento"`
	ReceiptName       *string       `db:"comprovante_nome" json:"comprovante_nome"`
	ReceiptURL        *string       `db:"comprovante_url" json:"comprovante_url"`
	ReceiptUploadedAt *time.Time    `db:"comprovante_data_upload" json:"comprovante_data_upload"`
	Notes             *string       `db:"observacoes" json:"observacoes"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// Farm represents the 'fazendas' table.
type Farm struct {
	ID            int64     `db:"id" json:"id"`
	Code          string    `db:"codigo" json:"codigo"`
	Name          string    `db:"fazenda" json:"fazenda"`
	State         string    `db:"estado" json:"estado"`
	Owner         string    `db:"proprietario" json:"proprietario"`
	Commodity     string    `db:"mercadoria" json:"mercadoria"`
	Variety       *string   `db:"variedade" json:"variedade"`
	Season        string    `db:"safra" json:"safra"`
	PricePerTon   float64   `db:"preco_por_tonelada" json:"preco_por_tonelada"`
	AvgSackWeight float64   `db:"peso_medio_saca" json:"peso_medio_saca"`
	SacksLoaded   int64     `db:"total_sacas_carregadas" json:"total_sacas_carregadas"`
	TotalTons     float64   `db:"total_toneladas" json:"total_toneladas"`
	TotalRevenue  float64   `db:"faturamento_total" json:"faturamento_total"`
	LastShipment  *Date     `db:"ultimo_frete" json:"ultimo_frete"`
	HarvestDone   bool      `db:"colheita_finalizada" json:"colheita_finalizada"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FarmVolume is one shipment's contribution to a farm's running totals.
type FarmVolume struct {
	Sacks   int64
	Tons    float64
	Revenue float64
	Date    Date
}

// Attachment represents the 'anexos' table.
type Attachment struct {
	ID           int64     `db:"id" json:"id"`
	Code         string    `db:"codigo" json:"codigo"`
	OriginalName string    `db:"nome_original" json:"nome_original"`
	FileName     string    `db:"nome_arquivo" json:"nome_arquivo"`
	URL          string    `db:"url" json:"url"`
	MimeType     string    `db:"tipo_mime" json:"tipo_mime"`
	Size         int64     `db:"tamanho" json:"tamanho"`
	EntityType   string    `db:"entidade_tipo" json:"entidade_tipo"`
	EntityID     int64     `db:"entidade_id" json:"entidade_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SettlementState is the locked view of a freight used by the payment
// settlement check.
type SettlementState struct {
	ID        int64  `db:"id"`
	PaymentID *int64 `db:"pagamento_id"`
}

type VehicleFilter struct {
	OnlyUnbound bool
}

type FreightFilter struct {
	From     *Date
	To       *Date
	DriverID *int64
	FarmID   *int64
}

// KPIs are the fleet-wide dashboard totals.
type KPIs struct {
	Revenue           float64 `db:"receita_total" json:"receitaTotal"`
	Costs             float64 `db:"custos_total" json:"custosTotal"`
	Profit            float64 `db:"lucro_total" json:"lucroTotal"`
	ProfitMargin      float64 `db:"-" json:"margemLucro"`
	FreightCount      int64   `db:"total_fretes" json:"totalFretes"`
	ActiveDrivers     int64   `db:"motoristas_ativos" json:"motoristasAtivos"`
	AvailableVehicles int64   `db:"caminhoes_disponiveis" json:"caminhoesDisponiveis"`
}

// RouteStat aggregates freights sharing an origin and destination.
type RouteStat struct {
	Origin       string  `db:"origem" json:"origem"`
	Destination  string  `db:"destino" json:"destino"`
	FreightCount int64   `db:"total_fretes" json:"total_fretes"`
	Revenue      float64 `db:"receita_total" json:"receita_total"`
	Costs        float64 `db:"custos_total" json:"custos_total"`
	Profit       float64 `db:"lucro_total" json:"lucro_total"`
}

// Enumerations stored in the entity tables.
var (
	VehicleStatusAvailable   = "disponivel"
	VehicleStatusInTransit   = "em_viagem"
	VehicleStatusMaintenance = "manutencao"

	VehicleTypeRigid     = "TRUCADO"
	VehicleTypeBoxRigid  = "TOCO"
	VehicleTypeTrailer   = "CARRETA"
	VehicleTypeBiTrain   = "BITREM"
	VehicleTypeRoadTrain = "RODOTREM"

	FuelS10        = "S10"
	OwnershipOwned = "PROPRIO"

	DriverStatusActive   = "ativo"
	DriverStatusInactive = "inativo"
	DriverStatusOnLeave  = "ferias"

	DriverTypeOwn        = "proprio"
	DriverTypeOutsourced = "terceirizado"
	DriverTypeAggregated = "agregado"

	PaymentStatusPending    = "pendente"
	PaymentStatusProcessing = "processando"
	PaymentStatusPaid       = "pago"
	PaymentStatusCanceled   = "cancelado"

	EntityPayment = "pagamento"
)
