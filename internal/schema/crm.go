package schema

const (
	RecordContact  = "contact"
	RecordCompany  = "company"
	RecordDeal     = "deal"
	RecordActivity = "activity"
)

// Foreign key columns shared by the CRM tables.
const (
	ColumnCompanyID = "company_id"
	ColumnContactID = "contact_id"
	ColumnDealID    = "deal_id"
)

// CRM returns the registry of CRM record types.
func CRM() *Registry {
	return NewRegistry(contactType, companyType, dealType, activityType)
}

var contactType = RecordType{
	Name:        RecordContact,
	Title:       "Contacts",
	Table:       "contacts",
	ForeignKeys: []string{ColumnCompanyID},
	Fields: []FieldDef{
		{Key: "first_name", Label: "First Name", Kind: KindText, DefaultVisible: true},
		{Key: "last_name", Label: "Last Name", Kind: KindText, DefaultVisible: true},
		{Key: "email", Label: "Email", Kind: KindText, DefaultVisible: true},
		{Key: "phone", Label: "Phone", Kind: KindText},
		{Key: "status", Label: "Status", Kind: KindSelect, Options: []string{"lead", "active", "customer", "churned"}, DefaultVisible: true},
		{Key: "source", Label: "Source", Kind: KindSelect, Options: []string{"web", "referral", "event", "outbound"}},
		{Key: "tags", Label: "Tags", Kind: KindText, Multi: true},
		{Key: "created_at", Label: "Created", Kind: KindDate, DefaultVisible: true},
		{Key: "company_name", Label: "Company", Kind: KindText, Source: SourceJoin, DefaultVisible: true},
		{Key: "deal_count", Label: "Deals", Kind: KindNumber, Source: SourceComputed},
		{Key: "activity_count", Label: "Activities", Kind: KindNumber, Source: SourceComputed},
	},
}

var companyType = RecordType{
	Name:  RecordCompany,
	Title: "Companies",
	Table: "companies",
	Fields: []FieldDef{
		{Key: "name", Label: "Name", Kind: KindText, DefaultVisible: true},
		{Key: "industry", Label: "Industry", Kind: KindSelect, Options: []string{"software", "finance", "healthcare", "retail", "manufacturing", "other"}, DefaultVisible: true},
		{Key: "website", Label: "Website", Kind: KindText},
		{Key: "employee_count", Label: "Employees", Kind: KindNumber},
		{Key: "annual_revenue", Label: "Annual Revenue", Kind: KindCurrency, DefaultVisible: true},
		{Key: "currency", Label: "Currency", Kind: KindText},
		{Key: "created_at", Label: "Created", Kind: KindDate, DefaultVisible: true},
		{Key: "contact_count", Label: "Contacts", Kind: KindNumber, Source: SourceComputed, DefaultVisible: true},
		{Key: "deal_count", Label: "Deals", Kind: KindNumber, Source: SourceComputed, DefaultVisible: true},
	},
}

var dealType = RecordType{
	Name:        RecordDeal,
	Title:       "Deals",
	Table:       "deals",
	ForeignKeys: []string{ColumnCompanyID, ColumnContactID},
	Fields: []FieldDef{
		{Key: "title", Label: "Title", Kind: KindText, DefaultVisible: true},
		{Key: "stage", Label: "Stage", Kind: KindSelect, Options: []string{"lead", "qualified", "proposal", "negotiation", "won", "lost"}, DefaultVisible: true},
		{Key: "value", Label: "Value", Kind: KindCurrency, DefaultVisible: true},
		{Key: "currency", Label: "Currency", Kind: KindText},
		{Key: "probability", Label: "Probability", Kind: KindNumber},
		{Key: "expected_close_date", Label: "Expected Close", Kind: KindDate, DefaultVisible: true},
		{Key: "is_closed", Label: "Closed", Kind: KindBoolean},
		{Key: "created_at", Label: "Created", Kind: KindDate},
		{Key: "company_name", Label: "Company", Kind: KindText, Source: SourceJoin, DefaultVisible: true},
		{Key: "contact_name", Label: "Contact", Kind: KindText, Source: SourceJoin},
		{Key: "activity_count", Label: "Activities", Kind: KindNumber, Source: SourceComputed},
	},
}

var activityType = RecordType{
	Name:        RecordActivity,
	Title:       "Activities",
	Table:       "activities",
	ForeignKeys: []string{ColumnContactID, ColumnDealID, ColumnCompanyID},
	Fields: []FieldDef{
		{Key: "subject", Label: "Subject", Kind: KindText, DefaultVisible: true},
		{Key: "type", Label: "Type", Kind: KindSelect, Options: []string{"call", "email", "meeting", "task"}, DefaultVisible: true},
		{Key: "due_date", Label: "Due", Kind: KindDate, DefaultVisible: true},
		{Key: "completed", Label: "Completed", Kind: KindBoolean, DefaultVisible: true},
		{Key: "created_at", Label: "Created", Kind: KindDate},
		{Key: "contact_name", Label: "Contact", Kind: KindText, Source: SourceJoin, DefaultVisible: true},
		{Key: "deal_title", Label: "Deal", Kind: KindText, Source: SourceJoin},
		{Key: "company_name", Label: "Company", Kind: KindText, Source: SourceJoin},
	},
}
