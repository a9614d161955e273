package domain

// Region is a country subdivision from the directory reference data.
type Region struct {
	ID        int    `json:"id"`
	CountryID string `json:"countryId"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}
