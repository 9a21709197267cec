package main

import (
	"time"

	"github.com/google/uuid"

	"shoponline/internal/catalog"
)

// seedProducts returns a demo catalog for local in-memory development.
func seedProducts() []catalog.Product {
	now := time.Now().UTC()

	product := func(offset time.Duration, name, category, image string, price float64, stock int) catalog.Product {
		return catalog.Product{
			ID:        uuid.New(),
			Name:      name,
			Category:  category,
			ImageURL:  image,
			Price:     price,
			Stock:     stock,
			CreatedAt: now.Add(offset),
			UpdatedAt: now.Add(offset),
		}
	}

	return []catalog.Product{
		product(0, "Mechanical Keyboard", "electronics", "https://images.example.com/keyboard.jpg", 89.99, 25),
		product(1*time.Minute, "Wireless Mouse", "electronics", "https://images.example.com/mouse.jpg", 29.99, 60),
		product(2*time.Minute, "27\" Monitor", "electronics", "https://images.example.com/monitor.jpg", 249.00, 12),
		product(3*time.Minute, "USB-C Hub", "electronics", "https://images.example.com/hub.jpg", 39.50, 40),
		product(4*time.Minute, "Standing Desk", "furniture", "https://images.example.com/desk.jpg", 449.00, 8),
		product(5*time.Minute, "Ergonomic Chair", "furniture", "https://images.example.com/chair.jpg", 329.00, 10),
		product(6*time.Minute, "Desk Lamp", "furniture", "https://images.example.com/lamp.jpg", 45.00, 35),
		product(7*time.Minute, "Noise-Cancelling Headphones", "audio", "https://images.example.com/headphones.jpg", 199.00, 18),
		product(8*time.Minute, "Bluetooth Speaker", "audio", "https://images.example.com/speaker.jpg", 79.00, 22),
		product(9*time.Minute, "Webcam", "electronics", "https://images.example.com/webcam.jpg", 69.00, 30),
		product(10*time.Minute, "Laptop Stand", "accessories", "https://images.example.com/stand.jpg", 34.99, 50),
		product(11*time.Minute, "Cable Organizer", "accessories", "https://images.example.com/organizer.jpg", 12.99, 100),
	}
}
