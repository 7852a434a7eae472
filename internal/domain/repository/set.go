package repository

// Set repositorios atados a una misma transacción.
type Set struct {
	Equipment     EquipmentRepository
	History       HistoryRepository
	Retired       RetiredIdentifierRepository
	Batches       BatchRepository
	Deliveries    DeliveryRepository
	Returns       ReturnRepository
	Inspections   InspectionRepository
	SectorReturns SectorReturnRepository
	Warehouses    WarehouseRepository
	Models        ModelRepository
}
