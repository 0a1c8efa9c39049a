// Copyright (c) Microsoft. All rights reserved.

// Package weather resolves a free-text location to coordinates with the
// Open-Meteo geocoding API and reads the current conditions there from the
// Open-Meteo forecast API.
//
//	c := weather.NewClient()
//	r, err := c.Lookup(ctx, "Camden, NJ")
//
// Readings are fetched fresh on every call; nothing is cached.
package weather
