package domain

// States lists the states, district and territories that SDWIS reports on.
var States = []State{
	{Code: "AL", Name: "Alabama", Slug: "alabama", Abbreviation: "AL", EPARegion: "4"},
	{Code: "AK", Name: "Alaska", Slug: "alaska", Abbreviation: "AK", EPARegion: "10"},
	{Code: "AZ", Name: "Arizona", Slug: "arizona", Abbreviation: "AZ", EPARegion: "9"},
	{Code: "AR", Name: "Arkansas", Slug: "arkansas", Abbreviation: "AR", EPARegion: "6"},
	{Code: "CA", Name: "California", Slug: "california", Abbreviation: "CA", EPARegion: "9"},
	{Code: "CO", Name: "Colorado", Slug: "colorado", Abbreviation: "CO", EPARegion: "8"},
	{Code: "CT", Name: "Connecticut", Slug: "connecticut", Abbreviation: "CT", EPARegion: "1"},
	{Code: "DE", Name: "Delaware", Slug: "delaware", Abbreviation: "DE", EPARegion: "3"},
	{Code: "FL", Name: "Florida", Slug: "florida", Abbreviation: "FL", EPARegion: "4"},
	{Code: "GA", Name: "Georgia", Slug: "georgia", Abbreviation: "GA", EPARegion: "4"},
	{Code: "HI", Name: "Hawaii", Slug: "hawaii", Abbreviation: "HI", EPARegion: "9"},
	{Code: "ID", Name: "Idaho", Slug: "idaho", Abbreviation: "ID", EPARegion: "10"},
	{Code: "IL", Name: "Illinois", Slug: "illinois", Abbreviation: "IL", EPARegion: "5"},
	{Code: "IN", Name: "Indiana", Slug: "indiana", Abbreviation: "IN", EPARegion: "5"},
	{Code: "IA", Name: "Iowa", Slug: "iowa", Abbreviation: "IA", EPARegion: "7"},
	{Code: "KS", Name: "Kansas", Slug: "kansas", Abbreviation: "KS", EPARegion: "7"},
	{Code: "KY", Name: "Kentucky", Slug: "kentucky", Abbreviation: "KY", EPARegion: "4"},
	{Code: "LA", Name: "Louisiana", Slug: "louisiana", Abbreviation: "LA", EPARegion: "6"},
	{Code: "ME", Name: "Maine", Slug: "maine", Abbreviation: "ME", EPARegion: "1"},
	{Code: "MD", Name: "Maryland", Slug: "maryland", Abbreviation: "MD", EPARegion: "3"},
	{Code: "MA", Name: "Massachusetts", Slug: "massachusetts", Abbreviation: "MA", EPARegion: "1"},
	{Code: "MI", Name: "Michigan", Slug: "michigan", Abbreviation: "MI", EPARegion: "5"},
	{Code: "MN", Name: "Minnesota", Slug: "minnesota", Abbreviation: "MN", EPARegion: "5"},
	{Code: "MS", Name: "Mississippi", Slug: "mississippi", Abbreviation: "MS", EPARegion: "4"},
	{Code: "MO", Name: "Missouri", Slug: "missouri", Abbreviation: "MO", EPARegion: "7"},
	{Code: "MT", Name: "Montana", Slug: "montana", Abbreviation: "MT", EPARegion: "8"},
	{Code: "NE", Name: "Nebraska", Slug: "nebraska", Abbreviation: "NE", EPARegion: "7"},
	{Code: "NV", Name: "Nevada", Slug: "nevada", Abbreviation: "NV", EPARegion: "9"},
	{Code: "NH", Name: "New Hampshire", Slug: "new-hampshire", Abbreviation: "NH", EPARegion: "1"},
	{Code: "NJ", Name: "New Jersey", Slug: "new-jersey", Abbreviation: "NJ", EPARegion: "2"},
	{Code: "NM", Name: "New Mexico", Slug: "new-mexico", Abbreviation: "NM", EPARegion: "6"},
	{Code: "NY", Name: "New York", Slug: "new-york", Abbreviation: "NY", EPARegion: "2"},
	{Code: "NC", Name: "North Carolina", Slug: "north-carolina", Abbreviation: "NC", EPARegion: "4"},
	{Code: "ND", Name: "North Dakota", Slug: "north-dakota", Abbreviation: "ND", EPARegion: "8"},
	{Code: "OH", Name: "Ohio", Slug: "ohio", Abbreviation: "OH", EPARegion: "5"},
	{Code: "OK", Name: "Oklahoma", Slug: "oklahoma", Abbreviation: "OK", EPARegion: "6"},
	{Code: "OR", Name: "Oregon", Slug: "oregon", Abbreviation: "OR", EPARegion: "10"},
	{Code: "PA", Name: "Pennsylvania", Slug: "pennsylvania", Abbreviation: "PA", EPARegion: "3"},
	{Code: "RI", Name: "Rhode Island", Slug: "rhode-island", Abbreviation: "RI", EPARegion: "1"},
	{Code: "SC", Name: "South Carolina", Slug: "south-carolina", Abbreviation: "SC", EPARegion: "4"},
	{Code: "SD", Name: "South Dakota", Slug: "south-dakota", Abbreviation: "SD", EPARegion: "8"},
	{Code: "TN", Name: "Tennessee", Slug: "tennessee", Abbreviation: "TN", EPARegion: "4"},
	{Code: "TX", Name: "Texas", Slug: "texas", Abbreviation: "TX", EPARegion: "6"},
	{Code: "UT", Name: "Utah", Slug: "utah", Abbreviation: "UT", EPARegion: "8"},
	{Code: "VT", Name: "Vermont", Slug: "vermont", Abbreviation: "VT", EPARegion: "1"},
	{Code: "VA", Name: "Virginia", Slug: "virginia", Abbreviation: "VA", EPARegion: "3"},
	{Code: "WA", Name: "Washington", Slug: "washington", Abbreviation: "WA", EPARegion: "10"},
	{Code: "WV", Name: "West Virginia", Slug: "west-virginia", Abbreviation: "WV", EPARegion: "3"},
	{Code: "WI", Name: "Wisconsin", Slug: "wisconsin", Abbreviation: "WI", EPARegion: "5"},
	{Code: "WY", Name: "Wyoming", Slug: "wyoming", Abbreviation: "WY", EPARegion: "8"},
	{Code: "DC", Name: "District of Columbia", Slug: "district-of-columbia", Abbreviation: "DC", EPARegion: "3"},
	{Code: "AS", Name: "American Samoa", Slug: "american-samoa", Abbreviation: "AS", EPARegion: "9"},
	{Code: "GU", Name: "Guam", Slug: "guam", Abbreviation: "GU", EPARegion: "9"},
	{Code: "MP", Name: "Northern Mariana Islands", Slug: "northern-mariana-islands", Abbreviation: "MP", EPARegion: "9"},
	{Code: "PR", Name: "Puerto Rico", Slug: "puerto-rico", Abbreviation: "PR", EPARegion: "2"},
	{Code: "VI", Name: "US Virgin Islands", Slug: "us-virgin-islands", Abbreviation: "VI", EPARegion: "2"},
}

// StateRecords returns States as writable records.
func StateRecords() []Record {
	records := make([]Record, len(States))
	for i, s := range States {
		records[i] = s
	}
	return records
}
