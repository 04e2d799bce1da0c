package ftdibb

import (
	"fmt"

	"github.com/google/gousb"
)

// ftdiVendorID is FTDI Ltd.'s USB vendor ID, shared by every chip the
// d2xx driver supports (FT232R, FT232H, ...).
const ftdiVendorID gousb.ID = 0x0403

// Adapter describes one FTDI USB device found on the bus, before it is
// opened through d2xx.
type Adapter struct {
	Vendor  gousb.ID
	Product gousb.ID
	Bus     int
	Address int
	Name    string
}

func (a Adapter) String() string {
	return fmt.Sprintf("bus %d addr %d (%04x:%04x) %s", a.Bus, a.Address, a.Vendor, a.Product, a.Name)
}

// Discover enumerates the USB bus for FTDI devices, for listing adapters
// before d2xx.All() opens one. Like usbbus.scanDevices, it opens every
// matching device just long enough to read its string descriptor, then
// closes it -- d2xx.All() still needs to open the device itself.
func Discover() ([]Adapter, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var found []Adapter
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == ftdiVendorID
	})
	for _, d := range devs {
		a := Adapter{
			Vendor:  d.Desc.Vendor,
			Product: d.Desc.Product,
			Bus:     d.Desc.Bus,
			Address: d.Desc.Address,
		}
		if name, err := d.GetStringDescriptor(1); err == nil {
			a.Name = name
		}
		found = append(found, a)
		d.Close()
	}
	if err != nil {
		return found, fmt.Errorf("ftdibb: scanning usb bus: %w", err)
	}
	return found, nil
}
