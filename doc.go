// Package ftclone detects counterfeit FT232R USB-serial bridges and
// protects them from the FTDI Windows driver that clears their product ID.
//
// Genuine FT232R silicon ignores EEPROM writes issued with the vendor
// request used here, while clones store them. A write probe on the user
// word at 0x3E therefore separates the two without changing the device.
//
// # References:
//
// FTDI (https://ftdichip.com/document/data-sheets/)
//   - [DS_FT232R]: FT232R USB UART IC Datasheet (https://ftdichip.com/wp-content/uploads/2020/08/DS_FT232R.pdf)
//   - [AN_121]: Accessing The EEPROM User Area Of FTDI Devices (https://ftdichip.com/wp-content/uploads/2020/08/AN_121_FTDI_Device_EEPROM_User_Area_Usage.pdf)
//
// Clone chips
//   - [marcan-ftdi]: FTDI Clone Tool by Hector Martin, 2014 (EEPROM checksum and write probe)
//   - [libftdi]: ftdi_read_eeprom_location / ftdi_write_eeprom_location (https://www.intra2net.com/en/developer/libftdi/)
package ftclone
