package offer

// Candidate keys per semantic field, tried in order. The first key is the
// canonical field name; the rest are legacy or source-specific spellings.
var (
	StatusKeys = []string{"status", "offer_status", "state"}

	// VolumeKeys is the chain used by most volume aggregates.
	VolumeKeys = []string{"tendered_volume", "volume", "qty", "quantity"}
	// SummaryVolumeKeys feeds the tendered volume KPI and also accepts the
	// awarded volume and barrel-named fields.
	SummaryVolumeKeys = []string{"tendered_volume", "awarded_volume", "volume", "qty", "quantity", "bbl", "bbls"}
	// BasinVolumeKeys feeds the basin bars and the basin map.
	BasinVolumeKeys   = []string{"tendered_volume", "volume", "qty", "quantity", "bbl", "bbls"}
	AwardedVolumeKeys = []string{"awarded_volume", "volume", "qty", "quantity"}

	PriceKeys = []string{"tendered_price", "price", "unit_price"}

	ProductKeys = []string{"product", "product_type"}
	CompanyKeys = []string{"company", "buyer", "seller"}

	// FilterCountryKeys matches the country filter against origin and
	// destination spellings alike.
	FilterCountryKeys      = []string{"country", "origin_country", "offering_country", "destination_country"}
	OriginCountryKeys      = []string{"country", "origin_country", "offering_country"}
	DestinationCountryKeys = []string{"destination_country", "destination"}
	ListingCountryKeys     = []string{"country", "destination_country", "offering_country"}

	FilterDateKeys  = []string{"date", "published_at", "created_at", "deadline", "closing_date"}
	PublishDateKeys = []string{"date", "published_at", "created_at"}
	DeadlineKeys    = []string{"deadline", "closing_date"}

	BasinKeys    = []string{"basin", "cuenca", "basin_name"}
	DeliveryKeys = []string{"delivery_location", "delivery", "location", "port", "terminal", "destination", "destination_port"}

	TitleKeys = []string{"title", "name", "product"}
	IDKeys    = []string{"id", "uuid"}
)
