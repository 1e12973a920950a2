package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/set-night/jewelbot/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFF")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	nameStyle  = lipgloss.NewStyle().Bold(true)
	priceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("171"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("171"))
)

// printer writes results as styled text for terminals or YAML for pipes.
type printer struct {
	w    io.Writer
	yaml bool
}

type productOut struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Price       string `yaml:"price,omitempty"`
	Image       string `yaml:"image,omitempty"`
}

type messageOut struct {
	Sender   string       `yaml:"sender"`
	Kind     string       `yaml:"kind"`
	Text     string       `yaml:"text,omitempty"`
	Images   []string     `yaml:"images,omitempty"`
	Products []productOut `yaml:"products,omitempty"`
}

func toProductOut(p domain.Product) productOut {
	out := productOut{ID: p.ID, Name: p.Name, Description: p.Description, Image: p.ImageLocator}
	if p.Price.Valid {
		out.Price = p.Price.Decimal.StringFixed(2)
	}
	return out
}

func (p *printer) encode(v any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func (p *printer) status(ok bool, message string) error {
	if p.yaml {
		return p.encode(struct {
			OK      bool   `yaml:"ok"`
			Message string `yaml:"message,omitempty"`
		}{ok, message})
	}
	mark := okStyle.Render("✔")
	if !ok {
		mark = errStyle.Render("✘")
	}
	_, err := fmt.Fprintln(p.w, mark, message)
	return err
}

func (p *printer) upload(res *domain.UploadResult) error {
	if p.yaml {
		return p.encode(struct {
			UploadID string `yaml:"upload_id"`
			Message  string `yaml:"message,omitempty"`
		}{res.UploadID, res.Message})
	}
	_, err := fmt.Fprintf(p.w, "%s %s\n%s\n", titleStyle.Render("upload"), res.UploadID, dimStyle.Render(res.Message))
	return err
}

func (p *printer) products(products []domain.Product, message string) error {
	if p.yaml {
		out := struct {
			Products []productOut `yaml:"products"`
			Message  string       `yaml:"message,omitempty"`
		}{Products: make([]productOut, 0, len(products)), Message: message}
		for _, prod := range products {
			out.Products = append(out.Products, toProductOut(prod))
		}
		return p.encode(out)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d products", len(products))))
	sb.WriteString("\n")
	for _, prod := range products {
		sb.WriteString(renderProduct(prod))
	}
	if message != "" {
		sb.WriteString(dimStyle.Render(message))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}

func renderProduct(prod domain.Product) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(nameStyle.Render(prod.Name))
	sb.WriteString(dimStyle.Render(" [" + prod.ID + "]"))
	if prod.Price.Valid {
		sb.WriteString("  ")
		sb.WriteString(priceStyle.Render(prod.Price.Decimal.StringFixed(2)))
	}
	sb.WriteString("\n")
	if prod.Description != "" {
		sb.WriteString("  " + prod.Description + "\n")
	}
	if prod.ImageLocator != "" {
		sb.WriteString(dimStyle.Render("  "+prod.ImageLocator) + "\n")
	}
	return sb.String()
}

func (p *printer) transcript(msgs []domain.ChatMessage) error {
	if p.yaml {
		out := make([]messageOut, 0, len(msgs))
		for _, m := range msgs {
			mo := messageOut{Sender: string(m.Sender), Kind: string(m.Kind), Text: m.Text}
			for _, img := range m.Images {
				mo.Images = append(mo.Images, img.Name)
			}
			for _, prod := range m.Products {
				mo.Products = append(mo.Products, toProductOut(prod))
			}
			out = append(out, mo)
		}
		return p.encode(out)
	}

	var sb strings.Builder
	for _, m := range msgs {
		who := botStyle.Render("bot ›")
		if m.Sender == domain.SenderUser {
			who = userStyle.Render("you ›")
		}
		switch m.Kind {
		case domain.KindText:
			fmt.Fprintf(&sb, "%s %s\n", who, m.Text)
		case domain.KindImageBatch:
			names := make([]string, len(m.Images))
			for i, img := range m.Images {
				names[i] = img.Name
			}
			fmt.Fprintf(&sb, "%s %s\n", who, dimStyle.Render("["+strings.Join(names, ", ")+"]"))
		case domain.KindProductBatch:
			fmt.Fprintf(&sb, "%s %d products\n", who, len(m.Products))
			for _, prod := range m.Products {
				sb.WriteString(renderProduct(prod))
			}
		}
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}
