package domain

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Kind string

const (
	KindText         Kind = "text"
	KindImageBatch   Kind = "image_batch"
	KindProductBatch Kind = "product_batch"
)

// ImageRef points at a locally held preview of an attached image.
type ImageRef struct {
	Preview string
	Name    string
}

// ChatMessage is a single transcript entry. Only the payload field matching
// Kind is meaningful.
type ChatMessage struct {
	Sender   Sender
	Kind     Kind
	Text     string
	Images   []ImageRef
	Products []Product
}

func UserText(text string) ChatMessage {
	return ChatMessage{Sender: SenderUser, Kind: KindText, Text: text}
}

func BotText(text string) ChatMessage {
	return ChatMessage{Sender: SenderBot, Kind: KindText, Text: text}
}

func UserImages(images []ImageRef) ChatMessage {
	return ChatMessage{Sender: SenderUser, Kind: KindImageBatch, Images: images}
}

func BotProducts(products []Product) ChatMessage {
	return ChatMessage{Sender: SenderBot, Kind: KindProductBatch, Products: products}
}

// Clone returns a copy that shares no slices with m.
func (m ChatMessage) Clone() ChatMessage {
	c := m
	if m.Images != nil {
		c.Images = append([]ImageRef(nil), m.Images...)
	}
	if m.Products != nil {
		c.Products = append([]Product(nil), m.Products...)
	}
	return c
}
