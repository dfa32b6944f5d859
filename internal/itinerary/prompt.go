// Package itinerary turns a trip selection into a model-generated travel
// plan: it renders the prompt, talks to the text model, pulls the JSON out
// of the reply and checks that it looks like an itinerary.
package itinerary

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"tripplanner/internal/domain"
	"tripplanner/internal/providers/genai"
)

const promptTemplate = "Generate Travel Plan for Location: %s for %d Days for %s with a %s budget. " +
	"Give me a Hotels options list with HotelName, Hotel address, Price, hotel image url, geo coordinates, rating, descriptions " +
	"and suggest itinerary array with placeName, Place Details, Place Image Url, Geo Coordinates, ticket Pricing, rating, " +
	"Time travel each of the location for %d days with each day plan with best time to visit " +
	"and the itinerary should be in array format and the entire in JSON format."

// BuildPrompt renders the generation prompt for sel. A non-English locale
// adds a line asking for descriptive text in that language.
func BuildPrompt(sel domain.TripSelection, locale string) string {
	days := int(sel.NoOfDays)
	prompt := fmt.Sprintf(promptTemplate, sel.Location, days, sel.Travels, sel.Budget, days)
	if name := LanguageName(locale); name != "" {
		prompt += " Write all descriptive text in " + name + "."
	}
	return prompt
}

// LanguageName returns the English display name of locale, or "" when the
// locale is empty, unparseable or English.
func LanguageName(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	if base.String() == "en" || base.String() == "und" {
		return ""
	}
	return display.English.Languages().Name(language.Make(base.String()))
}

// exampleHistory is the one-shot exchange sent ahead of every prompt so the
// model sees the expected shape of the answer.
func exampleHistory() []genai.Turn {
	return []genai.Turn{
		{Role: "user", Text: examplePrompt},
		{Role: "model", Text: exampleAnswer},
	}
}

const examplePrompt = "Generate Travel Plan for Location :las Vegas, for 3 Days for couple with cheap budget , " +
	"give me a hotel options list with hotel name, hotel adress ,hotel price ,hotel image url , geo coordinates , rating ,description " +
	"and suggest itineary with placename ,place details ,place image url , geo coordinates , ticket pricing , " +
	"time travel each of location for 3 days with each day plan with best time to visit in json formate " +
	"dont forget to give hotel list and all the details should be in json formate dont forget hotel price"

const exampleAnswer = "```json\n" + `{
  "location": "Las Vegas, Nevada",
  "duration": "3 Days",
  "budget": "Cheap",
  "travelers": "Couple",
  "hotel_options": [
    {
      "hotel_name": "Circus Circus Hotel & Casino",
      "hotel_address": "2880 S Las Vegas Blvd, Las Vegas, NV 89109",
      "hotel_image_url": "https://media-cdn.tripadvisor.com/media/photo-s/1a/72/6d/2a/exterior.jpg",
      "geo_coordinates": {"latitude": 36.1378, "longitude": -115.1696},
      "rating": 3.5,
      "description": "A classic Vegas hotel with affordable rates, a circus theme, and a variety of entertainment options including the Adventuredome theme park."
    },
    {
      "hotel_name": "Excalibur Hotel & Casino",
      "hotel_address": "3850 S Las Vegas Blvd, Las Vegas, NV 89109",
      "hotel_image_url": "https://media-cdn.tripadvisor.com/media/photo-s/19/d3/76/6e/excalibur-hotel-casino.jpg",
      "geo_coordinates": {"latitude": 36.0987, "longitude": -115.1742},
      "rating": 4.0,
      "description": "A medieval-themed hotel offering budget-friendly rooms, pools, and a variety of dining choices. Good location at the south end of the Strip."
    },
    {
      "hotel_name": "OYO Hotel and Casino Las Vegas",
      "hotel_address": "115 E Tropicana Ave, Las Vegas, NV 89109",
      "hotel_image_url": "https://media-cdn.tripadvisor.com/media/photo-s/15/2f/20/71/oyo-hotel-and-casino-las.jpg",
      "geo_coordinates": {"latitude": 36.1014, "longitude": -115.1671},
      "rating": 3.0,
      "description": "Budget-friendly option with basic amenities, located near the Las Vegas Strip. Offers decent value for those on a tight budget."
    }
  ],
  "itinerary": {
    "day1": {
      "theme": "Exploring the Strip (South)",
      "best_time_to_visit": "Morning and Evening",
      "activities": [
        {
          "place_name": "Welcome to Fabulous Las Vegas Sign",
          "place_details": "Iconic photo opportunity, must-visit for first-timers.",
          "place_image_url": "https://upload.wikimedia.org/wikipedia/commons/thumb/2/2d/Welcome_to_Fabulous_Las_Vegas_sign.JPG/1280px-Welcome_to_Fabulous_Las_Vegas_sign.JPG",
          "geo_coordinates": {"latitude": 36.0827, "longitude": -115.1726},
          "ticket_pricing": "Free",
          "time_travel": "Walking distance from southern end of the strip."
        }
      ]
    }
  }
}` + "\n```"
