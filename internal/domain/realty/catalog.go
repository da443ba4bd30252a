package realty

// Statuses and categories offered in form selects.
var (
	PropertyStatuses    = []string{"Pre-Selling", "Under Construction", "Ready For Occupancy", "Sold Out"}
	ListingStatuses     = []string{"Available", "Under Construction", "Ready For Occupancy", "Sold Out"}
	ApplicationStatuses = []string{"Pending", "Approved", "Rejected"}
	ScheduleStatuses    = []string{"Pending", "Accepted", "Declined"}

	PropertyCategories = []string{"Condominium", "House and Lot", "Lot Only", "Townhouse", "Commercial"}
	NewsCategories     = []string{"Announcement", "Promo", "Event"}
	ProfileRoles       = []string{"Admin", "Agent", "Staff"}
)

// Email template names used by decisions.
const (
	TemplateAppointmentAccepted = "appointment_accepted"
	TemplateAppointmentDeclined = "appointment_declined"
	TemplateApplicationApproved = "application_approved"
	TemplateApplicationRejected = "application_rejected"
)

var catalog = []Resource{
	{
		Key:          Properties,
		Title:        "Properties",
		Singular:     "Property",
		APIPath:      "api/properties",
		SearchFields: []string{"name", "location", "category", "status"},
		Icon:         "building",
		Form: []FormField{
			{Name: "name", Label: "Name", Type: FieldText, Rules: "required,max=120"},
			{Name: "location", Label: "Location", Type: FieldText, Rules: "required,max=255"},
			{Name: "price", Label: "Price (PHP)", Type: FieldNumber, Rules: "required,numeric,gte=0"},
			{Name: "category", Label: "Category", Type: FieldSelect, Options: PropertyCategories, Rules: "required"},
			{Name: "status", Label: "Status", Type: FieldSelect, Options: PropertyStatuses, Rules: "required"},
			{Name: "description", Label: "Description", Type: FieldTextarea, Rules: "omitempty,max=5000"},
			{Name: "images", Label: "Images", Type: FieldFile, Multiple: true, Help: "JPEG or PNG, up to 10 MB each"},
		},
	},
	{
		Key:          Listings,
		Title:        "Listings",
		Singular:     "Listing",
		APIPath:      "api/listings",
		SearchFields: []string{"title", "location"},
		Icon:         "list",
		Form: []FormField{
			{Name: "title", Label: "Title", Type: FieldText, Rules: "required,max=120"},
			{Name: "location", Label: "Location", Type: FieldText, Rules: "required,max=255"},
			{Name: "price", Label: "Price (PHP)", Type: FieldNumber, Rules: "required,numeric,gte=0"},
			{Name: "category", Label: "Category", Type: FieldSelect, Options: PropertyCategories, Rules: "required"},
			{Name: "status", Label: "Status", Type: FieldSelect, Options: ListingStatuses, Rules: "required"},
			{Name: "description", Label: "Description", Type: FieldTextarea, Rules: "omitempty,max=5000"},
			{Name: "image", Label: "Cover image", Type: FieldFile},
		},
	},
	{
		Key:          Applications,
		Title:        "Applications",
		Singular:     "Application",
		APIPath:      "api/applications",
		SearchFields: []string{"fullName", "email", "property"},
		Icon:         "file-text",
		ReadOnly:     true,
		Decisions: []Decision{
			{Action: "approve", Label: "Approve", Status: "Approved", Template: TemplateApplicationApproved, Style: "success"},
			{Action: "reject", Label: "Reject", Status: "Rejected", Template: TemplateApplicationRejected, Style: "danger"},
		},
	},
	{
		Key:          News,
		Title:        "News",
		Singular:     "Article",
		APIPath:      "api/news",
		SearchFields: []string{"title", "content"},
		Icon:         "newspaper",
		Form: []FormField{
			{Name: "title", Label: "Title", Type: FieldText, Rules: "required,max=200"},
			{Name: "category", Label: "Category", Type: FieldSelect, Options: NewsCategories, Rules: "required"},
			{Name: "content", Label: "Content", Type: FieldTextarea, Rules: "required", Help: "Markdown is supported"},
			{Name: "publishedAt", Label: "Publish date", Type: FieldDate, Rules: "omitempty,datetime=2006-01-02"},
			{Name: "image", Label: "Header image", Type: FieldFile},
		},
	},
	{
		Key:          Testimonials,
		Title:        "Testimonials",
		Singular:     "Testimonial",
		APIPath:      "api/testimonials",
		SearchFields: []string{"name", "content"},
		Icon:         "message-circle",
		Form: []FormField{
			{Name: "name", Label: "Client name", Type: FieldText, Rules: "required,max=120"},
			{Name: "content", Label: "Testimonial", Type: FieldTextarea, Rules: "required,max=2000"},
			{Name: "rating", Label: "Rating", Type: FieldNumber, Rules: "omitempty,number,min=1,max=5"},
			{Name: "photo", Label: "Photo", Type: FieldFile},
		},
	},
	{
		Key:          Videos,
		Title:        "Videos",
		Singular:     "Video",
		APIPath:      "api/videos",
		SearchFields: []string{"title"},
		Icon:         "film",
		Form: []FormField{
			{Name: "title", Label: "Title", Type: FieldText, Rules: "required,max=200"},
			{Name: "url", Label: "Video URL", Type: FieldURL, Rules: "required,url"},
			{Name: "description", Label: "Description", Type: FieldTextarea, Rules: "omitempty,max=2000"},
			{Name: "thumbnail", Label: "Thumbnail", Type: FieldFile},
		},
	},
	{
		Key:          Schedules,
		Title:        "Schedules",
		Singular:     "Appointment",
		APIPath:      "api/schedules",
		SearchFields: []string{"name", "email", "property"},
		Icon:         "calendar",
		ReadOnly:     true,
		Decisions: []Decision{
			{Action: "accept", Label: "Accept", Status: "Accepted", Template: TemplateAppointmentAccepted, Style: "success"},
			{Action: "decline", Label: "Decline", Status: "Declined", Template: TemplateAppointmentDeclined, Style: "danger"},
		},
	},
	{
		Key:          Profiles,
		Title:        "Profiles",
		Singular:     "Profile",
		APIPath:      "api/profiles",
		SearchFields: []string{"name", "email"},
		Icon:         "users",
		Form: []FormField{
			{Name: "name", Label: "Full name", Type: FieldText, Rules: "required,max=120"},
			{Name: "email", Label: "Email", Type: FieldEmail, Rules: "required,email"},
			{Name: "contact", Label: "Contact number", Type: FieldTel, Rules: "omitempty,max=20"},
			{Name: "role", Label: "Role", Type: FieldSelect, Options: ProfileRoles, Rules: "required"},
			{Name: "avatar", Label: "Avatar", Type: FieldFile},
		},
	},
}

// All returns every resource in sidebar order.
func All() []Resource {
	out := make([]Resource, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the resource for key.
func Lookup(key ResourceKey) (Resource, bool) {
	for _, r := range catalog {
		if r.Key == key {
			return r, true
		}
	}
	return Resource{}, false
}

// MustLookup is Lookup for keys known at compile time.
func MustLookup(key ResourceKey) Resource {
	r, ok := Lookup(key)
	if !ok {
		panic("realty: unknown resource " + string(key))
	}
	return r
}
