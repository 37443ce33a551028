package site

// Company is the static company profile shown in the header, footer and
// about page.
type Company struct {
	Name        string
	Tagline     string
	Years       int
	Address     string
	SalesPhone  string
	SalesEmail  string
	AccountsTel string
	AccountsEml string
	Industries  []string
}

// DefaultCompany is the manufacturer the site is built for.
var DefaultCompany = Company{
	Name:        "Aira Euro Automation",
	Tagline:     "Flow Control and Automation Solutions with 'You' in mind.",
	Years:       30,
	Address:     "Plot No.123-124, Aira Estate, B/h Security Estate, Near Kashiram Textile Mill, Narol, Ahmedabad 382405, Gujarat, India.",
	SalesPhone:  "+91 90994 77256",
	SalesEmail:  "mkt@airaindia.com",
	AccountsTel: "+91 98250 78689",
	AccountsEml: "accounts@airaindia.com",
	Industries: []string{
		"Oil & Gas",
		"Chemical & Petrochemical",
		"Pharmaceutical",
		"Food & Beverage",
		"Water Treatment",
		"Power Generation",
	},
}
