package view

import (
	"fmt"
	"io"
	"strings"
)

const absent = "none"

// Render 以文本形式输出文档
func Render(w io.Writer, d Document) error {
	var b strings.Builder

	fmt.Fprintf(&b, "network: %s\n", d.Network)
	if !d.Loaded {
		b.WriteString("no psbt loaded\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "txid: %s\nversion: %d  locktime: %d  fee: %s\n", d.TxID, d.Version, d.LockTime, d.Fee)

	for _, in := range d.Inputs {
		fmt.Fprintf(&b, "\ninput #%d  %s  %s", in.Index, in.Outpoint, in.Value)
		if in.Finalized {
			b.WriteString("  [finalized]")
		}
		b.WriteByte('\n')
		renderFields(&b, in.Fields)
	}

	for _, out := range d.Outputs {
		fmt.Fprintf(&b, "\noutput #%d  %s", out.Index, out.Amount)
		if out.Address != "" {
			fmt.Fprintf(&b, "  %s", out.Address)
		} else {
			fmt.Fprintf(&b, "  script %s", out.Script)
		}
		b.WriteByte('\n')
		renderFields(&b, out.Fields)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderFields(b *strings.Builder, fields []Field) {
	for _, f := range fields {
		if !f.Keyed {
			fmt.Fprintf(b, "  %s: %s\n", f.Name, slotsText(f.Value))
			continue
		}
		if len(f.Entries) == 0 {
			fmt.Fprintf(b, "  %s: %s\n", f.Name, absent)
			continue
		}
		fmt.Fprintf(b, "  %s:\n", f.Name)
		for _, e := range f.Entries {
			fmt.Fprintf(b, "    %s = %s\n", slotsText(e.Key), slotsText(e.Value))
		}
	}
}

// slotsText 全部为空时显示 none
func slotsText(slots []string) string {
	for _, s := range slots {
		if s != "" {
			return strings.Join(slots, " ")
		}
	}
	return absent
}
