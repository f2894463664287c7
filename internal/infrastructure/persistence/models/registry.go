package models

// All returns every model in dependency order, for AutoMigrate in tests and
// the sqlite driver
func All() []interface{} {
	return []interface{}{
		&CompanyModel{},
		&ModuleModel{},
		&RoleModel{},
		&RolePermissionModel{},
		&StaffModel{},
		&ItemModel{},
		&PartyModel{},
		&InvoiceTypeModel{},
		&PaymentTypeModel{},
		&PaymentStatusModel{},
		&UnitTypeModel{},
		&InvoiceModel{},
		&InvoiceLineModel{},
		&BankAccountModel{},
		&CashLedgerModel{},
		&BankTransactionModel{},
		&CashTransactionModel{},
		&PaymentInModel{},
		&PaymentOutModel{},
		&BankTransferModel{},
	}
}
