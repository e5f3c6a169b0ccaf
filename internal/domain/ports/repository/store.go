package repository

// Store bundles the full repository surface one backend provides. Both
// the Postgres backend and the snapshot-file backend populate every
// field; wiring code treats them interchangeably.
type Store struct {
	Jobs         JobRepository
	Orders       OrderRepository
	Customers    CustomerRepository
	Services     ServiceOfferingRepository
	Uploads      UploadRepository
	Reservations ReservationRepository
	Counters     CounterRepository
	Folders      FolderMetaRepository
	Audit        AuditLogRepository
	TM           TransactionManager
}
